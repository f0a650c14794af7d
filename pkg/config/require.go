package config

import (
	"log/slog"
	"os"
	"slices"
)

func MustNonEmpty(value, envName string) {
	if value == "" {
		fatal("missing required env", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		fatal("missing required env", envName)
	}
}

// MustOneOf rejects a set value outside allowed; an empty value is left to the caller's default.
func MustOneOf(value, envName string, allowed ...string) {
	if value != "" && !slices.Contains(allowed, value) {
		fatal("unsupported env value", envName, "value", value, "allowed", allowed)
	}
}

func fatal(msg, envName string, args ...any) {
	slog.Error(msg, append([]any{"env", envName}, args...)...)
	os.Exit(1)
}
