package env

import (
	"os"
	"strconv"
	"strings"
)

// FirstDefault returns the value of the first environment variable in keys
// that is set, otherwise it returns defaultValue.
func FirstDefault(defaultValue string, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}

	return defaultValue
}

// BoolDefault returns the boolean value of the first environment variable in
// keys that is set and parseable, otherwise it returns defaultValue.
func BoolDefault(defaultValue bool, keys ...string) bool {
	for _, key := range keys {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			continue
		}
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}

	return defaultValue
}
