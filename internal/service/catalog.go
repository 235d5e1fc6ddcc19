package service

import "github.com/RowanDark/enigma/internal/enigma"

// RotorInfo describes one catalog rotor.
type RotorInfo struct {
	ID     string `json:"id"`
	Wiring string `json:"wiring"`
	Notch  string `json:"notch"`
}

// ReflectorInfo describes one catalog reflector.
type ReflectorInfo struct {
	ID     string `json:"id"`
	Wiring string `json:"wiring"`
}

// Catalog lists the rotors and reflectors a key may name.
type Catalog struct {
	Rotors     []RotorInfo     `json:"rotors"`
	Reflectors []ReflectorInfo `json:"reflectors"`
}

// Catalog returns the built-in component catalog.
func (s *Service) Catalog() Catalog {
	return BuiltinCatalog()
}

// BuiltinCatalog returns the catalog without a Service.
func BuiltinCatalog() Catalog {
	var c Catalog
	for _, r := range enigma.Rotors() {
		c.Rotors = append(c.Rotors, RotorInfo{ID: string(r.ID), Wiring: r.Wiring, Notch: string(r.Notch)})
	}
	for _, r := range enigma.Reflectors() {
		c.Reflectors = append(c.Reflectors, ReflectorInfo{ID: string(r.ID), Wiring: r.Wiring})
	}
	return c
}
