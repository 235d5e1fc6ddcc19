package cipher

import (
	"context"
	"fmt"
	"strings"

	"github.com/RowanDark/enigma/internal/enigma"
)

// EnigmaOperation is the registry name of the machine operation.
const EnigmaOperation = "enigma"

// Parameter names understood by the enigma operation.
const (
	ParamRotors    = "rotors"
	ParamPositions = "positions"
	ParamRings     = "rings"
	ParamReflector = "reflector"
	ParamPlugboard = "plugboard"
)

// EnigmaOp runs the input through a freshly built machine. Because the
// machine is reciprocal the operation is its own reverse.
type EnigmaOp struct {
	BaseOperation
}

func (op *EnigmaOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	in, err := SettingsFromParams(params)
	if err != nil {
		return nil, err
	}
	settings, err := enigma.ParseSettings(in)
	if err != nil {
		return nil, err
	}
	m, err := enigma.New(settings)
	if err != nil {
		return nil, err
	}
	return []byte(m.Process(string(input))), nil
}

// SettingsFromParams reads a machine key out of loosely typed operation
// parameters. Rotors may be a list or a comma/space separated string;
// plugboard may be a list of pairs or a single string.
func SettingsFromParams(params map[string]interface{}) (enigma.SettingsInput, error) {
	var in enigma.SettingsInput
	if params == nil {
		return in, fmt.Errorf("%w: enigma operation requires a key", enigma.ErrInvalidConfig)
	}

	rotors, err := stringList(params[ParamRotors])
	if err != nil {
		return in, fmt.Errorf("%w: %s: %v", enigma.ErrInvalidConfig, ParamRotors, err)
	}
	in.Rotors = rotors

	for name, dst := range map[string]*string{
		ParamPositions: &in.Positions,
		ParamRings:     &in.Rings,
		ParamReflector: &in.Reflector,
	} {
		raw, ok := params[name]
		if !ok || raw == nil {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			return in, fmt.Errorf("%w: %s must be a string, got %T", enigma.ErrInvalidConfig, name, raw)
		}
		*dst = s
	}

	pairs, err := stringList(params[ParamPlugboard])
	if err != nil {
		return in, fmt.Errorf("%w: %s: %v", enigma.ErrInvalidConfig, ParamPlugboard, err)
	}
	in.Plugboard = strings.Join(pairs, " ")
	return in, nil
}

// KeyParams converts a settings input into operation parameters.
func KeyParams(in enigma.SettingsInput) map[string]interface{} {
	rotors := make([]interface{}, len(in.Rotors))
	for i, r := range in.Rotors {
		rotors[i] = r
	}
	return map[string]interface{}{
		ParamRotors:    rotors,
		ParamPositions: in.Positions,
		ParamRings:     in.Rings,
		ParamReflector: in.Reflector,
		ParamPlugboard: in.Plugboard,
	}
}

// withKey fills any key parameter missing from params with the value from key.
func withKey(params map[string]interface{}, key enigma.SettingsInput) map[string]interface{} {
	merged := KeyParams(key)
	for k, v := range params {
		merged[k] = v
	}
	return merged
}

func stringList(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		}), nil
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for i, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return nil, fmt.Errorf("element %d must be a string, got %T", i, elem)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", raw)
	}
}
