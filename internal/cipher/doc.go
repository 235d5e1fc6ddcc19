// Package cipher exposes the Enigma machine as named, chainable operations.
//
// # Overview
//
// Outer surfaces (the HTTP API, the gRPC service and enigmactl) do not talk
// to the engine directly. They look up an Operation by name, or run a
// Pipeline of operations, or run a saved Recipe:
//
//	op, _ := cipher.GetOperation("enigma")
//	out, _ := op.Execute(ctx, []byte("attack at dawn"), map[string]interface{}{
//	    "rotors":    "I,II,III",
//	    "positions": "aaa",
//	    "rings":     "aaa",
//	    "reflector": "B",
//	    "plugboard": "ab cd",
//	})
//
// # Pipelines
//
// A typical transmission strips punctuation, enciphers and prints five
// letter groups:
//
//	pipeline := &cipher.Pipeline{
//	    Operations: []cipher.OperationConfig{
//	        {Name: "letters_only"},
//	        {Name: "enigma", Parameters: key},
//	        {Name: "group5"},
//	    },
//	}
//
// # Recipes
//
// A Recipe is a named pipeline plus the key its enigma steps default to.
// RecipeManager keeps recipes in memory and, when given a directory, as one
// JSON file per recipe. Recipes store starting settings only; rotor state is
// never written anywhere.
//
// # Available Operations
//
//   - enigma - encipher or decipher with a fresh machine per call (self-inverse)
//   - letters_only - drop everything except a-z, lowercasing A-Z
//   - group5 - letters only, written in groups of five (reverse: ungroup)
//   - ungroup - remove all whitespace (reverse: group5)
//
// # Thread Safety
//
// The registry and RecipeManager lock internally. Operations build their own
// Machine on every Execute call and are safe for concurrent use.
package cipher
