package model

import (
	"time"

	"github.com/vlah-sh/mosaic/pkg/domain/types"
)

// EmbeddingDimension is the fixed dimensionality of component embeddings
const EmbeddingDimension = 768

// Component represents a reusable page fragment in the catalog.
// Usage/cooldown fields are mutated only through CatalogRepository.MarkUsed
// after a selection is finalized; this subsystem never deletes components.
type Component struct {
	ID            types.ComponentID
	SectionType   types.SectionType
	CategoryAllow []types.CategoryID // nil means compatible with all categories
	CategoryDeny  []types.CategoryID
	Embedding     []float32
	UsageCount    int64
	LastUsedAt    *time.Time
	CooldownUntil *time.Time
}

// CompatibleWith reports whether the component may be used for the given
// category: the category must not be denied, and must be allowed when an
// allowlist is present.
func (c *Component) CompatibleWith(category types.CategoryID) bool {
	for _, deny := range c.CategoryDeny {
		if deny == category {
			return false
		}
	}
	if c.CategoryAllow == nil {
		return true
	}
	for _, allow := range c.CategoryAllow {
		if allow == category {
			return true
		}
	}
	return false
}

// InCooldown reports whether the component is cooling down at the given time
func (c *Component) InCooldown(now time.Time) bool {
	return c.CooldownUntil != nil && c.CooldownUntil.After(now)
}

// EligibleAt reports whether the component may be selected for the given
// category at the given time: category compatibility holds and the cooldown
// window, if any, has passed.
func (c *Component) EligibleAt(category types.CategoryID, now time.Time) bool {
	return c.CompatibleWith(category) && !c.InCooldown(now)
}

// Clone returns a deep copy of the component
func (c *Component) Clone() *Component {
	copied := &Component{
		ID:          c.ID,
		SectionType: c.SectionType,
		UsageCount:  c.UsageCount,
	}
	if c.CategoryAllow != nil {
		copied.CategoryAllow = make([]types.CategoryID, len(c.CategoryAllow))
		copy(copied.CategoryAllow, c.CategoryAllow)
	}
	if c.CategoryDeny != nil {
		copied.CategoryDeny = make([]types.CategoryID, len(c.CategoryDeny))
		copy(copied.CategoryDeny, c.CategoryDeny)
	}
	if c.Embedding != nil {
		copied.Embedding = make([]float32, len(c.Embedding))
		copy(copied.Embedding, c.Embedding)
	}
	if c.LastUsedAt != nil {
		t := *c.LastUsedAt
		copied.LastUsedAt = &t
	}
	if c.CooldownUntil != nil {
		t := *c.CooldownUntil
		copied.CooldownUntil = &t
	}
	return copied
}

// ComponentMatch pairs a component with its similarity score from a
// vector-ranked catalog query
type ComponentMatch struct {
	Component  *Component
	Similarity float64
}
