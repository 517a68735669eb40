package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vlah-sh/mosaic/pkg/domain/model"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
)

type ledgerRepository struct {
	mu          sync.RWMutex
	generations map[types.GenerationID]*model.GenerationRecord
	events      []*model.UsageEvent
}

func newLedgerRepository() *ledgerRepository {
	return &ledgerRepository{
		generations: make(map[types.GenerationID]*model.GenerationRecord),
	}
}

func copyEvent(e *model.UsageEvent) *model.UsageEvent {
	copied := *e
	return &copied
}

func (r *ledgerRepository) PutGeneration(ctx context.Context, record *model.GenerationRecord) error {
	if record.ID == "" {
		return goerr.New("generation ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.generations[record.ID] = record.Clone()
	return nil
}

func (r *ledgerRepository) PutUsageEvents(ctx context.Context, events []*model.UsageEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, event := range events {
		if event.ComponentID == "" || event.GenerationID == "" {
			return goerr.New("usage event requires component and generation IDs")
		}
		r.events = append(r.events, copyEvent(event))
	}
	return nil
}

func (r *ledgerRepository) GetByLayoutHash(ctx context.Context, hash types.LayoutHash) (*model.GenerationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.generations {
		if record.LayoutHash == hash {
			return record.Clone(), nil
		}
	}

	return nil, nil
}

func (r *ledgerRepository) CountUsage(ctx context.Context, componentID types.ComponentID, category types.CategoryID, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, event := range r.events {
		if event.ComponentID != componentID {
			continue
		}
		if event.Category != category {
			continue
		}
		if event.UsedAt.Before(since) {
			continue
		}
		count++
	}

	return count, nil
}

func (r *ledgerRepository) ListRecentGenerations(ctx context.Context, category types.CategoryID, since time.Time, limit int) ([]*model.GenerationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.GenerationRecord, 0)
	for _, record := range r.generations {
		if record.Category != category {
			continue
		}
		if record.CreatedAt.Before(since) {
			continue
		}
		result = append(result, record.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}

	return result, nil
}

func (r *ledgerRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pruned int64
	for id, record := range r.generations {
		if record.CreatedAt.Before(cutoff) {
			delete(r.generations, id)
			pruned++
		}
	}

	kept := r.events[:0]
	for _, event := range r.events {
		if event.UsedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, event)
	}
	r.events = kept

	return pruned, nil
}
