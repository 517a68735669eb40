package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// ComponentID is the opaque unique identifier of a catalog component
type ComponentID string

// Validate checks if the ComponentID is valid
func (c ComponentID) Validate() error {
	if c == "" {
		return goerr.New("component ID cannot be empty")
	}
	return nil
}

// String returns the string representation of ComponentID
func (c ComponentID) String() string {
	return string(c)
}

// GenerationID is a UUID-based identifier for one page generation
type GenerationID string

// NewGenerationID generates a new UUID v7 GenerationID
func NewGenerationID() GenerationID {
	return GenerationID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of GenerationID
func (g GenerationID) String() string {
	return string(g)
}

// StyleTag is an optional free-form visual style label attached to a generation
type StyleTag string

// String returns the string representation of StyleTag
func (s StyleTag) String() string {
	return string(s)
}

// LayoutHash is the hex digest of a full section-to-component assignment
type LayoutHash string

// String returns the string representation of LayoutHash
func (h LayoutHash) String() string {
	return string(h)
}
