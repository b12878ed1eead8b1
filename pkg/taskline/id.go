package taskline

import "github.com/google/uuid"

// NewID returns a fresh random task id.
func NewID() string {
	return uuid.NewString()
}
