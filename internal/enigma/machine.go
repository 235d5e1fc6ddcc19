package enigma

import "strings"

// Machine is a configured Enigma. It is not safe for concurrent use.
type Machine struct {
	rotors    [3]*Rotor
	reflector *Reflector
	plugboard *Plugboard
}

const (
	left = iota
	middle
	right
)

// New builds a machine from s. All configuration errors are reported here,
// before any text is processed.
func New(s Settings) (*Machine, error) {
	m := &Machine{}
	for i, id := range s.Rotors {
		r, err := NewRotor(id, s.Positions[i], s.Rings[i])
		if err != nil {
			return nil, err
		}
		m.rotors[i] = r
	}
	ref, err := NewReflector(s.Reflector)
	if err != nil {
		return nil, err
	}
	pb, err := NewPlugboard(s.Plugboard)
	if err != nil {
		return nil, err
	}
	m.reflector, m.plugboard = ref, pb
	return m, nil
}

// Process encrypts or decrypts text. Letters are case-folded and returned in
// lowercase; every other rune is copied as is and does not step the rotors.
// Rotor state carries over between calls.
func (m *Machine) Process(text string) string {
	var out strings.Builder
	out.Grow(len(text))
	for _, r := range text {
		folded := fold(r)
		idx, ok := Index(folded)
		if !ok {
			out.WriteRune(r)
			continue
		}
		m.step()
		out.WriteRune(Letter(m.encipher(idx)))
	}
	return out.String()
}

// step advances the rotors for one key press. Both notch checks use the
// positions from before the press.
func (m *Machine) step() {
	middleAtNotch := m.rotors[middle].AtNotch()
	rightAtNotch := m.rotors[right].AtNotch()
	if middleAtNotch {
		m.rotors[left].Rotate()
	}
	if middleAtNotch || rightAtNotch {
		m.rotors[middle].Rotate()
	}
	m.rotors[right].Rotate()
}

func (m *Machine) encipher(idx int) int {
	idx = m.plugboard.mapping[idx]
	for i := right; i >= left; i-- {
		idx = m.rotors[i].forwardIndex(idx)
	}
	idx = m.reflector.mapping[idx]
	for i := left; i <= right; i++ {
		idx = m.rotors[i].backwardIndex(idx)
	}
	return m.plugboard.mapping[idx]
}

// Positions returns the rotor offsets, left to right.
func (m *Machine) Positions() [3]int {
	return [3]int{m.rotors[left].Position(), m.rotors[middle].Position(), m.rotors[right].Position()}
}

// Windows returns the letters showing in the rotor windows, left to right.
func (m *Machine) Windows() string {
	return string([]rune{m.rotors[left].Window(), m.rotors[middle].Window(), m.rotors[right].Window()})
}

// Settings returns the key the machine was built from with the current
// window letters in place of the starting positions.
func (m *Machine) Settings() Settings {
	s := Settings{Reflector: m.reflector.ID(), Plugboard: m.plugboard.Pairs()}
	for i, r := range m.rotors {
		s.Rotors[i] = r.ID()
		s.Positions[i] = r.Window()
		s.Rings[i] = Letter(r.RingSetting())
	}
	return s
}
