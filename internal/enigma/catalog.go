package enigma

import (
	"sort"
	"strings"
)

// RotorID names a rotor in the catalog.
type RotorID string

const (
	RotorI   RotorID = "I"
	RotorII  RotorID = "II"
	RotorIII RotorID = "III"
)

// ReflectorID names a reflector in the catalog.
type ReflectorID string

const (
	ReflectorA ReflectorID = "A"
	ReflectorB ReflectorID = "B"
	ReflectorC ReflectorID = "C"
)

// RotorSpec is the fixed wiring and turnover notch of a catalog rotor.
type RotorSpec struct {
	ID     RotorID
	Wiring string
	Notch  rune
}

// ReflectorSpec is the fixed wiring of a catalog reflector.
type ReflectorSpec struct {
	ID     ReflectorID
	Wiring string
}

var rotorCatalog = map[RotorID]RotorSpec{
	RotorI:   {ID: RotorI, Wiring: "ekmflgdqvzntowyhxuspaibrcj", Notch: 'q'},
	RotorII:  {ID: RotorII, Wiring: "ajdksiruxblhwtmcqgznpyfvoe", Notch: 'e'},
	RotorIII: {ID: RotorIII, Wiring: "bdfhjlcprtxvznyeiwgakmusqo", Notch: 'v'},
}

var reflectorCatalog = map[ReflectorID]ReflectorSpec{
	ReflectorA: {ID: ReflectorA, Wiring: "ejmzalyxvbwfcrquontspikhgd"},
	ReflectorB: {ID: ReflectorB, Wiring: "yruhqsldpxngokmiebfzcwvjat"},
	ReflectorC: {ID: ReflectorC, Wiring: "fvpjiaoyedrzxwgctkuqsbnmhl"},
}

// ParseRotorID resolves a rotor identifier, ignoring case and surrounding space.
func ParseRotorID(s string) (RotorID, error) {
	id := RotorID(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := rotorCatalog[id]; !ok {
		return "", configErr("rotor", s, ErrUnknownRotor)
	}
	return id, nil
}

// ParseReflectorID resolves a reflector identifier, ignoring case and surrounding space.
func ParseReflectorID(s string) (ReflectorID, error) {
	id := ReflectorID(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := reflectorCatalog[id]; !ok {
		return "", configErr("reflector", s, ErrUnknownReflector)
	}
	return id, nil
}

// LookupRotor returns the catalog entry for id.
func LookupRotor(id RotorID) (RotorSpec, bool) {
	spec, ok := rotorCatalog[id]
	return spec, ok
}

// LookupReflector returns the catalog entry for id.
func LookupReflector(id ReflectorID) (ReflectorSpec, bool) {
	spec, ok := reflectorCatalog[id]
	return spec, ok
}

// Rotors lists the rotor catalog in identifier order.
func Rotors() []RotorSpec {
	out := make([]RotorSpec, 0, len(rotorCatalog))
	for _, spec := range rotorCatalog {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reflectors lists the reflector catalog in identifier order.
func Reflectors() []ReflectorSpec {
	out := make([]ReflectorSpec, 0, len(reflectorCatalog))
	for _, spec := range reflectorCatalog {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
