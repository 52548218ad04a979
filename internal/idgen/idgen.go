// Package idgen generates short, URL-safe identifiers for log entries and
// gate transitions.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the two kinds of records gatewatch creates.
const (
	LogPrefix        = "gl-"
	TransitionPrefix = "gt-"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// LogID returns a new activity-log entry ID.
func LogID() string {
	return mustGenerate(LogPrefix)
}

// TransitionID returns a new gate-transition ID.
func TransitionID() string {
	return mustGenerate(TransitionPrefix)
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// mustGenerate only fails if the system random source fails, in which case
// nothing else in the process can be trusted either.
func mustGenerate(prefix string) string {
	id, err := GenerateWithPrefix(prefix)
	if err != nil {
		panic(err)
	}
	return id
}
