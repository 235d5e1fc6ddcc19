package enigma

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseSettings(t *testing.T) {
	got, err := ParseSettings(SettingsInput{
		Rotors:    []string{"iii", " I ", "II"},
		Positions: "XQF",
		Rings:     "czm",
		Reflector: "c",
		Plugboard: "QM, za",
	})
	if err != nil {
		t.Fatalf("ParseSettings: %v", err)
	}
	want := Settings{
		Rotors:    [3]RotorID{RotorIII, RotorI, RotorII},
		Positions: [3]rune{'x', 'q', 'f'},
		Rings:     [3]rune{'c', 'z', 'm'},
		Reflector: ReflectorC,
		Plugboard: []string{"az", "mq"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestParseSettingsDefaultsRings(t *testing.T) {
	got, err := ParseSettings(SettingsInput{Rotors: []string{"I", "II", "III"}, Positions: "aaa", Reflector: "B"})
	if err != nil {
		t.Fatalf("ParseSettings: %v", err)
	}
	if !reflect.DeepEqual(got, DefaultSettings()) {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestParseSettingsErrors(t *testing.T) {
	base := func() SettingsInput {
		return SettingsInput{Rotors: []string{"I", "II", "III"}, Positions: "aaa", Rings: "aaa", Reflector: "B"}
	}
	tests := []struct {
		name   string
		mutate func(*SettingsInput)
		cause  error
		reason string
	}{
		{"two rotors", func(in *SettingsInput) { in.Rotors = in.Rotors[:2] }, ErrRotorCount, "rotor_count"},
		{"unknown rotor", func(in *SettingsInput) { in.Rotors[1] = "VI" }, ErrUnknownRotor, "unknown_rotor"},
		{"short positions", func(in *SettingsInput) { in.Positions = "ab" }, ErrBadLetter, "bad_letter"},
		{"missing positions", func(in *SettingsInput) { in.Positions = "" }, ErrBadLetter, "bad_letter"},
		{"digit ring", func(in *SettingsInput) { in.Rings = "a1a" }, ErrBadLetter, "bad_letter"},
		{"unknown reflector", func(in *SettingsInput) { in.Reflector = "D" }, ErrUnknownReflector, "unknown_reflector"},
		{"duplicate plug", func(in *SettingsInput) { in.Plugboard = "ab ac" }, ErrDuplicateLetter, "duplicate_letter"},
		{"malformed plug", func(in *SettingsInput) { in.Plugboard = "ab-cd" }, ErrMalformedPair, "malformed_pair"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			tt.mutate(&in)
			_, err := ParseSettings(in)
			if !errors.Is(err, tt.cause) || !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected %v, got %v", tt.cause, err)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if cfgErr.Reason() != tt.reason {
				t.Fatalf("expected reason %q, got %q", tt.reason, cfgErr.Reason())
			}
		})
	}
}

func TestSettingsInputRoundTrip(t *testing.T) {
	s := Settings{
		Rotors:    [3]RotorID{RotorII, RotorIII, RotorI},
		Positions: [3]rune{'m', 'c', 'k'},
		Rings:     [3]rune{'a', 'b', 'c'},
		Reflector: ReflectorA,
		Plugboard: []string{"ab", "yz"},
	}
	back, err := ParseSettings(s.Input())
	if err != nil {
		t.Fatalf("ParseSettings: %v", err)
	}
	if !reflect.DeepEqual(back, s) {
		t.Fatalf("expected %+v, got %+v", s, back)
	}
}

func TestCatalogListing(t *testing.T) {
	var ids []RotorID
	for _, spec := range Rotors() {
		ids = append(ids, spec.ID)
	}
	if !reflect.DeepEqual(ids, []RotorID{RotorI, RotorII, RotorIII}) {
		t.Fatalf("unexpected rotor order %v", ids)
	}
	if len(Reflectors()) != 3 {
		t.Fatalf("expected three reflectors")
	}
	for _, spec := range Rotors() {
		if !IsLetter(spec.Notch) || len(spec.Wiring) != Size {
			t.Fatalf("bad catalog entry %+v", spec)
		}
	}
}
