package types

import (
	"time"

	"github.com/google/uuid"
)

// TreeID is a UUIDv7 identifier assigned to a stored tree definition.
type TreeID string

// APIKeyID is a UUIDv7 identifier for an issued API key.
type APIKeyID string

// NewTreeID generates a UUIDv7 tree identifier.
// Time-ordered IDs keep inserts clustered in B-tree pages.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewTreeID() TreeID {
	return TreeID(uuid.Must(uuid.NewV7()).String())
}

// NewAPIKeyID generates a UUIDv7 API key identifier.
func NewAPIKeyID() APIKeyID {
	return APIKeyID(uuid.Must(uuid.NewV7()).String())
}

// ParseTreeID validates and converts a string to TreeID.
func ParseTreeID(s string) (TreeID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return TreeID(s), nil
}

// TreeIDTime extracts the timestamp embedded in a UUIDv7 tree ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func TreeIDTime(id TreeID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
