package utils

import "github.com/google/uuid"

// NewID returns a random (v4) UUID string used for labels and sessions.
func NewID() string {
	return uuid.NewString()
}

// IsValidID reports whether s parses as a UUID.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
