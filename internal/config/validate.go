package config

import (
	"fmt"
	"sort"
	"strings"
)

// validValues maps known keys to their allowed values.
var validValues = map[string][]string{
	KeyListState: {"open", "closed", "all"},
	KeyListOrder: {"asc", "desc"},
	KeyLogLevel:  {"debug", "info", "warn", "error"},
	KeyLogFormat: {"text", "json"},
}

// KnownKeys returns the known keys in sorted order.
func KnownKeys() []string {
	keys := make([]string, 0, len(validValues))
	for k := range validValues {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CheckValue reports whether value is acceptable for key. Unknown keys are
// rejected.
func CheckValue(key, value string) error {
	allowed, ok := validValues[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(KnownKeys(), ", "))
	}
	if !contains(allowed, value) {
		return fmt.Errorf("%s: invalid value %q (allowed: %s)", key, value, strings.Join(allowed, ", "))
	}
	return nil
}

// Validate checks all values in s for known keys. It returns an error
// describing every invalid value found, or nil if all values are valid.
// Keys it does not know are left alone.
func Validate(s Store) error {
	all := s.All()
	var errs []string

	for _, key := range KnownKeys() {
		val, ok := all[key]
		if !ok {
			continue
		}
		if err := CheckValue(key, val); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
