package enigma

import (
	"errors"
	"testing"
)

func mustRotor(t *testing.T, id RotorID, position, ring rune) *Rotor {
	t.Helper()
	r, err := NewRotor(id, position, ring)
	if err != nil {
		t.Fatalf("NewRotor(%s, %q, %q): %v", id, position, ring, err)
	}
	return r
}

func TestRotorForwardBackwardInverse(t *testing.T) {
	for _, spec := range Rotors() {
		for _, pos := range "amz" {
			for _, ring := range "aqy" {
				r := mustRotor(t, spec.ID, pos, ring)
				for _, letter := range Alphabet {
					encoded, err := r.EncodeForward(letter)
					if err != nil {
						t.Fatalf("EncodeForward: %v", err)
					}
					decoded, err := r.EncodeBackward(encoded)
					if err != nil {
						t.Fatalf("EncodeBackward: %v", err)
					}
					if decoded != letter {
						t.Errorf("rotor %s pos %c ring %c: %c -> %c -> %c", spec.ID, pos, ring, letter, encoded, decoded)
					}
				}
			}
		}
	}
}

func TestRotorForwardMatchesWiringAtOrigin(t *testing.T) {
	r := mustRotor(t, RotorI, 'a', 'a')
	for i, letter := range Alphabet {
		got, _ := r.EncodeForward(letter)
		if want := rune(rotorCatalog[RotorI].Wiring[i]); got != want {
			t.Fatalf("EncodeForward(%c) = %c, want %c", letter, got, want)
		}
	}
}

func TestRotorRotate(t *testing.T) {
	r := mustRotor(t, RotorI, 'y', 'a')
	r.Rotate()
	if r.Position() != 25 || r.Window() != 'z' {
		t.Fatalf("expected position 25 (z), got %d (%c)", r.Position(), r.Window())
	}
	r.Rotate()
	if r.Position() != 0 {
		t.Fatalf("expected wrap to 0, got %d", r.Position())
	}

	start := r.Position()
	for i := 0; i < Size; i++ {
		r.Rotate()
	}
	if r.Position() != start {
		t.Fatalf("26 rotations should return to %d, got %d", start, r.Position())
	}
}

func TestRotorEncodingChangesAfterRotation(t *testing.T) {
	r := mustRotor(t, RotorI, 'a', 'a')
	forward, _ := r.EncodeForward('a')
	backward, _ := r.EncodeBackward('a')
	r.Rotate()
	forwardAfter, _ := r.EncodeForward('a')
	backwardAfter, _ := r.EncodeBackward('a')
	if forward == forwardAfter {
		t.Errorf("forward encoding of a unchanged after rotation: %c", forward)
	}
	if backward == backwardAfter {
		t.Errorf("backward encoding of a unchanged after rotation: %c", backward)
	}
}

func TestRotorRingSettingOffsetsWiring(t *testing.T) {
	plain := mustRotor(t, RotorII, 'a', 'a')
	ringed := mustRotor(t, RotorII, 'a', 'b')
	same := 0
	for _, letter := range Alphabet {
		a, _ := plain.EncodeForward(letter)
		b, _ := ringed.EncodeForward(letter)
		if a == b {
			same++
		}
	}
	if same == Size {
		t.Fatal("ring setting had no effect on the substitution")
	}
	if ringed.Position() != 0 || ringed.RingSetting() != 1 {
		t.Fatalf("ring setting must not move the rotor: position %d ring %d", ringed.Position(), ringed.RingSetting())
	}
}

func TestRotorAtNotch(t *testing.T) {
	cases := []struct {
		id    RotorID
		notch rune
	}{
		{RotorI, 'q'},
		{RotorII, 'e'},
		{RotorIII, 'v'},
	}
	for _, tc := range cases {
		t.Run(string(tc.id), func(t *testing.T) {
			r := mustRotor(t, tc.id, tc.notch-1, 'a')
			if r.AtNotch() {
				t.Fatalf("rotor %s should not be at notch on %c", tc.id, r.Window())
			}
			r.Rotate()
			if !r.AtNotch() {
				t.Fatalf("rotor %s should be at notch on %c", tc.id, r.Window())
			}
		})
	}
}

func TestNewRotorErrors(t *testing.T) {
	cases := []struct {
		name  string
		id    RotorID
		pos   rune
		ring  rune
		cause error
	}{
		{"unknown rotor", "VI", 'a', 'a', ErrUnknownRotor},
		{"digit position", RotorI, '1', 'a', ErrBadLetter},
		{"punctuation ring", RotorI, 'a', '!', ErrBadLetter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRotor(tc.id, tc.pos, tc.ring)
			if !errors.Is(err, tc.cause) {
				t.Fatalf("expected %v, got %v", tc.cause, err)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected configuration class, got %v", err)
			}
		})
	}
}

func TestNewRotorFoldsCase(t *testing.T) {
	r := mustRotor(t, RotorIII, 'Q', 'C')
	if r.Window() != 'q' || r.RingSetting() != 2 {
		t.Fatalf("expected window q ring 2, got %c ring %d", r.Window(), r.RingSetting())
	}
}

func TestRotorRejectsNonAlphabet(t *testing.T) {
	r := mustRotor(t, RotorI, 'a', 'a')
	for _, bad := range []rune{'A', '1', '!', ' '} {
		if _, err := r.EncodeForward(bad); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("EncodeForward(%q): expected invalid input, got %v", bad, err)
		}
		if _, err := r.EncodeBackward(bad); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("EncodeBackward(%q): expected invalid input, got %v", bad, err)
		}
	}
}
