package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	UserID     ID
	TaskID     ID
	CategoryID ID
	TagID      ID
)

func (id UserID) String() string     { return ID(id).String() }
func (id TaskID) String() string     { return ID(id).String() }
func (id CategoryID) String() string { return ID(id).String() }
func (id TagID) String() string      { return ID(id).String() }

// ParseUserID parses a UUID string into a UserID
func ParseUserID(s string) (UserID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("user ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("user ID %q is not a UUID: %w", s, err)
	}
	return UserID(parsed.String()), nil
}

// ParseTaskID parses a UUID string into a TaskID
func ParseTaskID(s string) (TaskID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("task ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("task ID %q is not a UUID: %w", s, err)
	}
	return TaskID(parsed.String()), nil
}

// DefaultUserID is the owner of every request in single-user mode.
const DefaultUserID UserID = "550e8400-e29b-41d4-a716-446655440000"
