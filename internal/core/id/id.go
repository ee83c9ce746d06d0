// Package id generates and checks entity identities.
// Identities are persisted as 36-character UUID strings.
package id

import (
	"github.com/google/uuid"
)

// Length is the fixed length of a persisted identity.
const Length = 36

// New generates a new UUIDv7 string.
// UUIDv7 is time-ordered, so ids sort close to insertion order.
func New() string {
	v, err := uuid.NewV7()
	if err != nil {
		// Fallback to V4 if V7 fails (should never happen)
		return uuid.NewString()
	}
	return v.String()
}

// Valid reports whether s is a canonical 36-character UUID.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// MustNew is New for table-driven test fixtures that need a known-good value.
func MustNew() string {
	return uuid.Must(uuid.NewV7()).String()
}
