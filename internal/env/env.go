package env

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
)

var (
	warnLogger func(format string, args ...any) = log.Printf
	warnMu     sync.Mutex
	warnedKeys sync.Map
)

// Lookup returns the value of newKey if it exists. When only the legacy
// oldKey is present its value is returned and a deprecation warning is
// logged once per key. An empty oldKey disables the fallback.
func Lookup(newKey, oldKey string) (string, bool) {
	if v, ok := os.LookupEnv(newKey); ok {
		return v, true
	}
	if oldKey == "" {
		return "", false
	}
	if v, ok := os.LookupEnv(oldKey); ok {
		logDeprecated(oldKey, newKey)
		return v, true
	}
	return "", false
}

// String is Lookup with surrounding whitespace trimmed; blank values count as
// unset.
func String(newKey, oldKey string) (string, bool) {
	v, ok := Lookup(newKey, oldKey)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Bool reads a boolean flag. Unset or unparsable values yield fallback.
func Bool(newKey, oldKey string, fallback bool) bool {
	v, ok := String(newKey, oldKey)
	if !ok {
		return fallback
	}
	switch strings.ToLower(v) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		logInvalid(newKey, v, "a boolean")
		return fallback
	}
	return parsed
}

// Float reads a floating point value. Unset or unparsable values yield
// fallback.
func Float(newKey, oldKey string, fallback float64) float64 {
	v, ok := String(newKey, oldKey)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logInvalid(newKey, v, "a number")
		return fallback
	}
	return parsed
}

func logDeprecated(oldKey, newKey string) {
	onceIface, _ := warnedKeys.LoadOrStore(oldKey, &sync.Once{})
	once := onceIface.(*sync.Once)
	once.Do(func() {
		warn("%s is deprecated; use %s", oldKey, newKey)
	})
}

func logInvalid(key, value, want string) {
	warn("ignoring %s=%q: not %s", key, value, want)
}

func warn(format string, args ...any) {
	warnMu.Lock()
	logger := warnLogger
	warnMu.Unlock()
	logger(format, args...)
}

// ResetWarningsForTesting clears the cached once guards so tests can verify
// warning behaviour deterministically.
func ResetWarningsForTesting() {
	warnMu.Lock()
	warnedKeys = sync.Map{}
	warnMu.Unlock()
}

// SetWarnLoggerForTesting swaps the logger used for warnings. The returned
// function restores the previous logger and should be deferred in tests.
func SetWarnLoggerForTesting(fn func(format string, args ...any)) (restore func()) {
	warnMu.Lock()
	previous := warnLogger
	warnLogger = fn
	warnMu.Unlock()
	return func() {
		warnMu.Lock()
		warnLogger = previous
		warnMu.Unlock()
	}
}
