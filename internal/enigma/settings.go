package enigma

import (
	"fmt"
	"strings"
)

// Slot names the three rotor positions, left to right.
var Slot = [3]string{"left", "middle", "right"}

// Settings is the complete key for a machine: rotor order, window letters,
// ring settings, reflector and plugboard pairs. Rotors and letters are
// ordered left, middle, right.
type Settings struct {
	Rotors    [3]RotorID
	Positions [3]rune
	Rings     [3]rune
	Reflector ReflectorID
	Plugboard []string
}

// DefaultSettings returns rotors I-II-III at AAA with ring settings AAA,
// reflector B and an empty plugboard.
func DefaultSettings() Settings {
	return Settings{
		Rotors:    [3]RotorID{RotorI, RotorII, RotorIII},
		Positions: [3]rune{'a', 'a', 'a'},
		Rings:     [3]rune{'a', 'a', 'a'},
		Reflector: ReflectorB,
	}
}

// Validate checks every field without building a machine.
func (s Settings) Validate() error {
	_, err := New(s)
	return err
}

// SettingsInput carries a key as loosely typed strings, the way it arrives
// from forms, flags, JSON bodies and recipe files.
type SettingsInput struct {
	Rotors    []string `json:"rotors" yaml:"rotors"`
	Positions string   `json:"positions" yaml:"positions"`
	Rings     string   `json:"rings" yaml:"rings"`
	Reflector string   `json:"reflector" yaml:"reflector"`
	Plugboard string   `json:"plugboard,omitempty" yaml:"plugboard,omitempty"`
}

// Input converts s back to its string form.
func (s Settings) Input() SettingsInput {
	return SettingsInput{
		Rotors:    []string{string(s.Rotors[0]), string(s.Rotors[1]), string(s.Rotors[2])},
		Positions: string(s.Positions[:]),
		Rings:     string(s.Rings[:]),
		Reflector: string(s.Reflector),
		Plugboard: strings.Join(s.Plugboard, " "),
	}
}

// ParseSettings validates in and converts it to Settings. Positions and rings
// are three-letter strings such as "AQV"; an empty ring string means "aaa".
func ParseSettings(in SettingsInput) (Settings, error) {
	var s Settings
	if len(in.Rotors) != 3 {
		return Settings{}, configErr("rotors", strings.Join(in.Rotors, ","), ErrRotorCount)
	}
	for i, raw := range in.Rotors {
		id, err := ParseRotorID(raw)
		if err != nil {
			return Settings{}, err
		}
		s.Rotors[i] = id
	}
	positions, err := parseTriple("positions", in.Positions, "")
	if err != nil {
		return Settings{}, err
	}
	rings, err := parseTriple("rings", in.Rings, "aaa")
	if err != nil {
		return Settings{}, err
	}
	s.Positions, s.Rings = positions, rings
	if s.Reflector, err = ParseReflectorID(in.Reflector); err != nil {
		return Settings{}, err
	}
	pb, err := ParsePlugboard(in.Plugboard)
	if err != nil {
		return Settings{}, err
	}
	s.Plugboard = pb.Pairs()
	return s, nil
}

func parseTriple(field, raw, fallback string) ([3]rune, error) {
	var out [3]rune
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = fallback
	}
	letters := []rune(strings.ToLower(trimmed))
	if len(letters) != 3 {
		return out, configErr(field, raw, fmt.Errorf("%w: want three letters", ErrBadLetter))
	}
	for i, r := range letters {
		if !IsLetter(r) {
			return out, configErr(field, raw, ErrBadLetter)
		}
		out[i] = r
	}
	return out, nil
}
