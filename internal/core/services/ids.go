package services

import (
	"strings"

	"github.com/google/uuid"
)

// maxIDAttempts bounds regeneration of short identifiers on collision.
const maxIDAttempts = 5

// newShortID returns 8 uppercase hex characters taken from a random UUID.
func newShortID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
