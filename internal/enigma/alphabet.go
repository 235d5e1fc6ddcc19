package enigma

// Alphabet is the ordered set of letters the machine operates on.
const Alphabet = "abcdefghijklmnopqrstuvwxyz"

// Size is the number of letters in Alphabet.
const Size = len(Alphabet)

// Index returns the zero-based position of r in Alphabet.
func Index(r rune) (int, bool) {
	if r < 'a' || r > 'z' {
		return 0, false
	}
	return int(r - 'a'), true
}

// Letter returns the letter at position i, reduced modulo 26.
func Letter(i int) rune {
	return rune(Alphabet[mod(i)])
}

// IsLetter reports whether r belongs to Alphabet.
func IsLetter(r rune) bool {
	_, ok := Index(r)
	return ok
}

// fold lowercases ASCII capitals and leaves everything else untouched.
func fold(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func mod(i int) int {
	i %= Size
	if i < 0 {
		i += Size
	}
	return i
}

// parseLetter folds r and checks it is a letter.
func parseLetter(field string, r rune) (int, error) {
	idx, ok := Index(fold(r))
	if !ok {
		return 0, configErr(field, string(r), ErrBadLetter)
	}
	return idx, nil
}
