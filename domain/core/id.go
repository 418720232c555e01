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
	UploadID  ID
	IntentID  ID
	AttemptID ID
)

func (id UploadID) String() string  { return ID(id).String() }
func (id IntentID) String() string  { return ID(id).String() }
func (id AttemptID) String() string { return ID(id).String() }

// NewUploadID identifies one file selection in the batch upload session.
func NewUploadID() UploadID { return UploadID(NewID()) }

// NewIntentID identifies one confirmation request.
func NewIntentID() IntentID { return IntentID(NewID()) }

// NewAttemptID identifies one recorded issuance attempt.
func NewAttemptID() AttemptID { return AttemptID(NewID()) }

// ParseIntentID parses a string into IntentID
func ParseIntentID(s string) (IntentID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("intent ID cannot be empty")
	}
	return IntentID(s), nil
}
