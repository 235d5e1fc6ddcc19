package enigma

import (
	"sort"
	"strings"
)

// Plugboard swaps letters in pairs before and after the rotor stack. The
// zero value is not usable; an empty NewPlugboard is the identity.
type Plugboard struct {
	mapping [Size]int
}

// NewPlugboard wires the given two-letter pairs. Letters are case-insensitive.
// A pair must hold two different letters and no letter may be used twice.
func NewPlugboard(pairs []string) (*Plugboard, error) {
	pb := &Plugboard{}
	for i := range pb.mapping {
		pb.mapping[i] = i
	}
	used := make(map[int]string, 2*len(pairs))
	for _, pair := range pairs {
		letters := []rune(strings.ToLower(pair))
		if len(letters) != 2 || letters[0] == letters[1] {
			return nil, configErr("plugboard pair", pair, ErrMalformedPair)
		}
		a, okA := Index(letters[0])
		b, okB := Index(letters[1])
		if !okA || !okB {
			return nil, configErr("plugboard pair", pair, ErrMalformedPair)
		}
		for _, idx := range []int{a, b} {
			if prev, dup := used[idx]; dup {
				return nil, configErr("plugboard pair", pair, duplicateOf(Letter(idx), prev))
			}
			used[idx] = pair
		}
		pb.mapping[a] = b
		pb.mapping[b] = a
	}
	return pb, nil
}

// ParsePlugboard splits spec on whitespace and commas and wires the resulting
// pairs. An empty spec yields the identity plugboard.
func ParsePlugboard(spec string) (*Plugboard, error) {
	return NewPlugboard(SplitPairs(spec))
}

// SplitPairs breaks a plugboard specification such as "ab cd,ef" into pairs
// without validating them.
func SplitPairs(spec string) []string {
	return strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// Swap returns the letter paired with letter, or letter itself when unplugged.
func (p *Plugboard) Swap(letter rune) (rune, error) {
	idx, ok := Index(letter)
	if !ok {
		return 0, &InputError{Component: "plugboard", Rune: letter}
	}
	return Letter(p.mapping[idx]), nil
}

// Pairs returns the wired pairs in canonical order, each pair lowercase with
// its letters sorted.
func (p *Plugboard) Pairs() []string {
	var out []string
	for i, j := range p.mapping {
		if i < j {
			out = append(out, string([]rune{Letter(i), Letter(j)}))
		}
	}
	sort.Strings(out)
	return out
}

type duplicateError struct {
	letter rune
	first  string
}

func duplicateOf(letter rune, first string) error {
	return &duplicateError{letter: letter, first: first}
}

func (e *duplicateError) Error() string {
	return ErrDuplicateLetter.Error() + ": " + string(e.letter) + " already wired by " + e.first
}

func (e *duplicateError) Unwrap() error { return ErrDuplicateLetter }
