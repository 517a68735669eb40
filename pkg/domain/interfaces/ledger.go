package interfaces

import (
	"context"
	"time"

	"github.com/vlah-sh/mosaic/pkg/domain/model"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
)

// LedgerRepository defines the interface for the generation usage ledger.
// The ledger is deliberately independent of the catalog store: catalog
// unavailability must not prevent recording or reading usage history.
type LedgerRepository interface {
	// PutGeneration appends one generation record
	PutGeneration(ctx context.Context, record *model.GenerationRecord) error

	// PutUsageEvents appends one row per component used in a generation
	PutUsageEvents(ctx context.Context, events []*model.UsageEvent) error

	// GetByLayoutHash retrieves a generation record with the given layout
	// hash. Returns (nil, nil) when no such record exists.
	GetByLayoutHash(ctx context.Context, hash types.LayoutHash) (*model.GenerationRecord, error)

	// CountUsage returns how often a component was used within the
	// category since the given time
	CountUsage(ctx context.Context, componentID types.ComponentID, category types.CategoryID, since time.Time) (int64, error)

	// ListRecentGenerations retrieves up to limit generation records for
	// the category created since the given time, newest first
	ListRecentGenerations(ctx context.Context, category types.CategoryID, since time.Time, limit int) ([]*model.GenerationRecord, error)

	// PruneOlderThan deletes ledger rows created before the cutoff and
	// returns the number of deleted generation records
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
