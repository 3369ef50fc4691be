package common

import (
	"github.com/google/uuid"
)

// NewPatternID generates a unique pattern ID with the "pat_" prefix
// Format: pat_<uuid>
func NewPatternID() string {
	return "pat_" + uuid.New().String()
}
