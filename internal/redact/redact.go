// Package redact keeps Enigma key material and message text out of logs.
package redact

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	neverPersistKey = "never_persist"
	RedactedKey     = "[REDACTED_KEY]"
	RedactedText    = "[REDACTED_TEXT]"
)

// keyFields are the parts of a machine key that must stay secret. Rotor order
// and reflector are not included.
var keyFields = map[string]struct{}{
	"positions": {},
	"rings":     {},
	"plugboard": {},
}

var textFields = map[string]struct{}{
	"plaintext":  {},
	"ciphertext": {},
	"text":       {},
	"output":     {},
}

var (
	// positions=abc, rings: "bbb", plugboard "ab cd" (the last is how
	// configuration errors print their value).
	assignRe = regexp.MustCompile(`(?i)\b(positions|rings|plugboard|plaintext|ciphertext|text|output)(\s*[:=]\s*|\s+)("[^"]*"|'[^']*'|[^\s"',;&]+)`)
	quotedRe = regexp.MustCompile(`^["']`)
)

type stringer interface {
	String() string
}

// String masks inline key=value forms of sensitive fields.
func String(in string) string {
	if strings.TrimSpace(in) == "" {
		return in
	}
	return assignRe.ReplaceAllStringFunc(in, func(match string) string {
		parts := assignRe.FindStringSubmatch(match)
		name, sep, value := parts[1], parts[2], parts[3]
		// A bare word after a space is prose, not an assignment.
		if strings.TrimSpace(sep) == "" && !quotedRe.MatchString(value) {
			return match
		}
		return name + sep + maskFor(name)
	})
}

func maskFor(field string) string {
	if _, ok := keyFields[strings.ToLower(field)]; ok {
		return RedactedKey
	}
	return RedactedText
}

func sensitive(field string) (string, bool) {
	lower := strings.ToLower(field)
	if _, ok := keyFields[lower]; ok {
		return RedactedKey, true
	}
	if _, ok := textFields[lower]; ok {
		return RedactedText, true
	}
	return "", false
}

// Interface redacts recognised sensitive values within nested structures.
func Interface(value any) any {
	switch v := value.(type) {
	case string:
		return String(v)
	case stringer:
		return String(v.String())
	case []string:
		return Slice(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = Interface(elem)
		}
		return out
	case map[string]string:
		return MapString(v)
	case map[string]any:
		return Map(v)
	case error:
		return String(v.Error())
	default:
		return value
	}
}

// Map returns a copy of in with sensitive fields masked, nested values
// redacted and the never_persist marker removed.
func Map(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	var extra map[string]struct{}
	if marker, ok := lookupFold(in, neverPersistKey); ok {
		extra = normaliseKeys(collectNeverPersist(marker))
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		if strings.EqualFold(k, neverPersistKey) {
			continue
		}
		if mask, ok := sensitive(k); ok {
			out[k] = mask
			continue
		}
		if _, ok := extra[k]; ok {
			out[k] = RedactedKey
			continue
		}
		out[k] = Interface(v)
	}
	return out
}

// MapString is Map for string maps. never_persist holds a comma separated
// list of extra keys to mask.
func MapString(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	generic := make(map[string]any, len(in))
	for k, v := range in {
		generic[k] = v
	}
	masked := Map(generic)
	out := make(map[string]string, len(masked))
	for k, v := range masked {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// Slice redacts sensitive values within a slice of strings.
func Slice(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = String(v)
	}
	return out
}

func lookupFold(in map[string]any, key string) (any, bool) {
	for k, v := range in {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func collectNeverPersist(value any) []string {
	switch v := value.(type) {
	case string:
		return strings.Split(v, ",")
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			out = append(out, fmt.Sprint(elem))
		}
		return out
	default:
		return nil
	}
}

func normaliseKeys(keys []string) map[string]struct{} {
	out := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = struct{}{}
		}
	}
	return out
}
