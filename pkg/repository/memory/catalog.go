package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vlah-sh/mosaic/pkg/domain/model"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
)

type catalogRepository struct {
	mu         sync.RWMutex
	components map[types.ComponentID]*model.Component
}

func newCatalogRepository() *catalogRepository {
	return &catalogRepository{
		components: make(map[types.ComponentID]*model.Component),
	}
}

func (r *catalogRepository) Put(ctx context.Context, component *model.Component) error {
	if err := component.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid component")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.components[component.ID] = component.Clone()
	return nil
}

func (r *catalogRepository) Get(ctx context.Context, id types.ComponentID) (*model.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	component, exists := r.components[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "component not found", goerr.V("componentID", id))
	}

	return component.Clone(), nil
}

func (r *catalogRepository) ListBySection(ctx context.Context, section types.SectionType) ([]*model.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Component, 0)
	for _, component := range r.components {
		if component.SectionType == section {
			result = append(result, component.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (r *catalogRepository) ListEligible(ctx context.Context, section types.SectionType, category types.CategoryID, now time.Time) ([]*model.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Component, 0)
	for _, component := range r.components {
		if component.SectionType != section {
			continue
		}
		if !component.EligibleAt(category, now) {
			continue
		}
		result = append(result, component.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (r *catalogRepository) FindSimilar(ctx context.Context, section types.SectionType, category types.CategoryID, embedding []float32, limit int, now time.Time) ([]*model.ComponentMatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*model.ComponentMatch
	for _, component := range r.components {
		if component.SectionType != section {
			continue
		}
		if !component.EligibleAt(category, now) {
			continue
		}
		if len(component.Embedding) == 0 {
			continue
		}
		matches = append(matches, &model.ComponentMatch{
			Component:  component.Clone(),
			Similarity: cosineSimilarity(embedding, component.Embedding),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Component.ID < matches[j].Component.ID
	})

	if limit > len(matches) {
		limit = len(matches)
	}

	return matches[:limit], nil
}

func (r *catalogRepository) MarkUsed(ctx context.Context, id types.ComponentID, now time.Time, base, cap time.Duration) (*model.Component, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	component, exists := r.components[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "component not found", goerr.V("componentID", id))
	}

	component.UsageCount++
	usedAt := now
	component.LastUsedAt = &usedAt

	cooldown := base * time.Duration(component.UsageCount)
	if cooldown > cap {
		cooldown = cap
	}
	until := now.Add(cooldown)
	component.CooldownUntil = &until

	return component.Clone(), nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
