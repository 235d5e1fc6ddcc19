// Package enigma implements a three-rotor Enigma cipher machine.
//
// # Overview
//
// A Machine is composed of three rotors (left, middle, right), a reflector and
// a plugboard. Every letter typed first steps the rotors and is then routed
//
//	plugboard -> right -> middle -> left -> reflector -> left -> middle -> right -> plugboard
//
// Because the reflector is an involution without fixed points, the same
// configuration both encrypts and decrypts:
//
//	settings := enigma.Settings{
//	    Rotors:    [3]enigma.RotorID{enigma.RotorI, enigma.RotorII, enigma.RotorIII},
//	    Positions: [3]rune{'a', 'a', 'a'},
//	    Rings:     [3]rune{'a', 'a', 'a'},
//	    Reflector: enigma.ReflectorB,
//	}
//	m, _ := enigma.New(settings)
//	ciphertext := m.Process("hello world")
//
//	m2, _ := enigma.New(settings)
//	plaintext := m2.Process(ciphertext) // "hello world"
//
// Characters outside a-z (after case folding) are copied through unchanged and
// do not advance the rotors. Output is always lowercase.
//
// # Stepping
//
// The right rotor advances on every key press. The middle rotor advances when
// the right rotor sits on its notch, and also when the middle rotor itself sits
// on its notch, in which case the left rotor advances too. That second rule is
// the historical double step.
//
// # Thread Safety
//
// Catalog lookups are read-only and safe for concurrent use. A Machine mutates
// its rotor positions on every Process call and must not be shared between
// goroutines without external locking; build one Machine per message.
package enigma
