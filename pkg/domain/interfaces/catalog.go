package interfaces

import (
	"context"
	"time"

	"github.com/vlah-sh/mosaic/pkg/domain/model"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
)

// CatalogRepository defines the interface for the component catalog store
type CatalogRepository interface {
	// Put creates or replaces a component entry. Used by ingestion and
	// test seeding; selection never calls it.
	Put(ctx context.Context, component *model.Component) error

	// Get retrieves a component by ID
	Get(ctx context.Context, id types.ComponentID) (*model.Component, error)

	// ListBySection retrieves all components of a section type regardless
	// of cooldown or category state
	ListBySection(ctx context.Context, section types.SectionType) ([]*model.Component, error)

	// ListEligible retrieves components of a section type that are
	// category-compatible and not in cooldown at the given time
	ListEligible(ctx context.Context, section types.SectionType, category types.CategoryID, now time.Time) ([]*model.Component, error)

	// FindSimilar performs cosine similarity search over eligible
	// components of a section type, returning up to limit matches ordered
	// by descending similarity
	FindSimilar(ctx context.Context, section types.SectionType, category types.CategoryID, embedding []float32, limit int, now time.Time) ([]*model.ComponentMatch, error)

	// MarkUsed atomically increments the usage count and schedules the
	// next cooldown window: CooldownUntil = now + min(cap, base*newCount).
	// The read-modify-write must be applied as a single conditional update
	// so concurrent selections of the same component cannot lose updates.
	MarkUsed(ctx context.Context, id types.ComponentID, now time.Time, base, cap time.Duration) (*model.Component, error)
}
