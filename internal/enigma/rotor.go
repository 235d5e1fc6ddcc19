package enigma

import "fmt"

// Rotor is a single wired substitution disc. The zero value is not usable;
// build rotors with NewRotor.
type Rotor struct {
	id       RotorID
	forward  [Size]int
	backward [Size]int
	notch    int
	position int
	ring     int
}

// NewRotor builds a rotor from the catalog with the given starting window
// letter and ring setting. Letters are case-insensitive.
func NewRotor(id RotorID, position, ring rune) (*Rotor, error) {
	spec, ok := rotorCatalog[id]
	if !ok {
		return nil, configErr("rotor", string(id), ErrUnknownRotor)
	}
	pos, err := parseLetter(fmt.Sprintf("rotor %s position", id), position)
	if err != nil {
		return nil, err
	}
	rs, err := parseLetter(fmt.Sprintf("rotor %s ring setting", id), ring)
	if err != nil {
		return nil, err
	}
	r := &Rotor{id: id, position: pos, ring: rs}
	r.notch, _ = Index(spec.Notch)
	for i, w := range spec.Wiring {
		out, _ := Index(w)
		r.forward[i] = out
		r.backward[out] = i
	}
	return r, nil
}

// ID returns the catalog identifier of the rotor.
func (r *Rotor) ID() RotorID { return r.id }

// Position returns the current rotational offset in [0,26).
func (r *Rotor) Position() int { return r.position }

// RingSetting returns the ring offset in [0,26).
func (r *Rotor) RingSetting() int { return r.ring }

// Window returns the letter currently showing for this rotor.
func (r *Rotor) Window() rune { return Letter(r.position) }

// Rotate advances the rotor by one position.
func (r *Rotor) Rotate() {
	r.position = mod(r.position + 1)
}

// AtNotch reports whether the rotor shows its notch letter.
func (r *Rotor) AtNotch() bool {
	return r.position == r.notch
}

// EncodeForward substitutes a letter on the right-to-left pass.
func (r *Rotor) EncodeForward(letter rune) (rune, error) {
	idx, ok := Index(letter)
	if !ok {
		return 0, &InputError{Component: "rotor " + string(r.id), Rune: letter}
	}
	return Letter(r.forwardIndex(idx)), nil
}

// EncodeBackward substitutes a letter on the left-to-right pass. It inverts
// EncodeForward for the same position and ring setting.
func (r *Rotor) EncodeBackward(letter rune) (rune, error) {
	idx, ok := Index(letter)
	if !ok {
		return 0, &InputError{Component: "rotor " + string(r.id), Rune: letter}
	}
	return Letter(r.backwardIndex(idx)), nil
}

func (r *Rotor) forwardIndex(idx int) int {
	shift := r.position - r.ring
	return mod(r.forward[mod(idx+shift)] - shift)
}

func (r *Rotor) backwardIndex(idx int) int {
	shift := r.position - r.ring
	return mod(r.backward[mod(idx+shift)] - shift)
}
