package model

import (
	"time"

	"github.com/vlah-sh/mosaic/pkg/domain/types"
)

// GenerationRecord is a durable ledger entry describing one finalized page
// generation. Records are written once, never mutated, and pruned after the
// retention window.
type GenerationRecord struct {
	ID         types.GenerationID
	Category   types.CategoryID
	StyleTag   types.StyleTag
	Components Layout
	LayoutHash types.LayoutHash
	CreatedAt  time.Time
}

// Clone returns a deep copy of the record
func (r *GenerationRecord) Clone() *GenerationRecord {
	copied := *r
	copied.Components = r.Components.Clone()
	return &copied
}

// UsageEvent is one ledger row per component used in a generation.
// Rolling usage counts for novelty scoring are computed over these rows.
type UsageEvent struct {
	ComponentID  types.ComponentID
	GenerationID types.GenerationID
	SectionType  types.SectionType
	Category     types.CategoryID
	StyleTag     types.StyleTag
	UsedAt       time.Time
}
