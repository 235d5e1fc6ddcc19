package cipher

import (
	"context"
	"strings"
	"unicode"

	"github.com/RowanDark/enigma/internal/enigma"
)

// GroupSize is the traditional length of a transmitted letter group.
const GroupSize = 5

// LettersOnlyOp keeps only alphabet letters, lowercased
type LettersOnlyOp struct {
	BaseOperation
}

func (op *LettersOnlyOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	return []byte(lettersOnly(string(input))), nil
}

// Group5Op writes the letters of the input in space separated groups of five
type Group5Op struct {
	BaseOperation
}

func (op *Group5Op) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	letters := lettersOnly(string(input))
	var sb strings.Builder
	for i, r := range letters {
		if i > 0 && i%GroupSize == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return []byte(sb.String()), nil
}

// UngroupOp removes all whitespace
type UngroupOp struct {
	BaseOperation
}

func (op *UngroupOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	return []byte(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, string(input))), nil
}

func lettersOnly(s string) string {
	return strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if !enigma.IsLetter(r) {
			return -1
		}
		return r
	}, s)
}
