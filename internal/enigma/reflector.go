package enigma

// Reflector is a fixed involutive wiring that turns the signal around.
type Reflector struct {
	id      ReflectorID
	mapping [Size]int
}

// NewReflector builds the catalog reflector id.
func NewReflector(id ReflectorID) (*Reflector, error) {
	spec, ok := reflectorCatalog[id]
	if !ok {
		return nil, configErr("reflector", string(id), ErrUnknownReflector)
	}
	ref := &Reflector{id: id}
	for i, w := range spec.Wiring {
		ref.mapping[i], _ = Index(w)
	}
	return ref, nil
}

// ID returns the catalog identifier of the reflector.
func (f *Reflector) ID() ReflectorID { return f.id }

// Reflect returns the letter wired to letter.
func (f *Reflector) Reflect(letter rune) (rune, error) {
	idx, ok := Index(letter)
	if !ok {
		return 0, &InputError{Component: "reflector " + string(f.id), Rune: letter}
	}
	return Letter(f.mapping[idx]), nil
}
