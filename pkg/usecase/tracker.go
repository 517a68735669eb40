package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vlah-sh/mosaic/pkg/domain/model"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
	"github.com/vlah-sh/mosaic/pkg/utils/async"
	"github.com/vlah-sh/mosaic/pkg/utils/logging"
)

// similarLayoutScan bounds how many recent generations a similarity scan
// compares against
const similarLayoutScan = 200

// TrackerUseCase maintains the durable cross-request usage ledger and the
// novelty-priority queries built on top of it.
type TrackerUseCase struct {
	parent *UseCases
}

// RecordGeneration writes one GenerationRecord and one UsageEvent per
// component. Ledger write failures are logged and swallowed: the
// generation itself already succeeded, and losing one bookkeeping row only
// drifts novelty scoring slightly.
func (uc *TrackerUseCase) RecordGeneration(ctx context.Context, generationID types.GenerationID, category types.CategoryID, styleTag types.StyleTag, layout model.Layout) error {
	if generationID == "" {
		return goerr.New("generation ID is required")
	}
	if len(layout) == 0 {
		return goerr.New("layout is empty")
	}

	now := uc.parent.now()
	record := &model.GenerationRecord{
		ID:         generationID,
		Category:   category,
		StyleTag:   styleTag,
		Components: layout.Clone(),
		LayoutHash: layout.Hash(),
		CreatedAt:  now,
	}

	if err := uc.parent.ledger.PutGeneration(ctx, record); err != nil {
		logging.From(ctx).Warn("failed to record generation, novelty scores will drift",
			"error", err.Error(),
			"generationID", generationID,
		)
		return nil
	}

	events := make([]*model.UsageEvent, 0, len(layout))
	for section, componentID := range layout {
		events = append(events, &model.UsageEvent{
			ComponentID:  componentID,
			GenerationID: generationID,
			SectionType:  section,
			Category:     category,
			StyleTag:     styleTag,
			UsedAt:       now,
		})
	}

	if err := uc.parent.ledger.PutUsageEvents(ctx, events); err != nil {
		logging.From(ctx).Warn("failed to record usage events, novelty scores will drift",
			"error", err.Error(),
			"generationID", generationID,
		)
	}

	return nil
}

// RecordGenerationAsync records the generation in a background goroutine
func (uc *TrackerUseCase) RecordGenerationAsync(ctx context.Context, generationID types.GenerationID, category types.CategoryID, styleTag types.StyleTag, layout model.Layout) {
	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.RecordGeneration(ctx, generationID, category, styleTag, layout)
	})
}

// PriorityScore returns the standalone novelty priority of a component in
// [0, 1]: 1.0 for unused components, decreasing with usage in the lookback
// window. A zero lookbackDays uses the policy default. When the ledger is
// unreachable the score degrades to neutral 1.0 with a warning.
func (uc *TrackerUseCase) PriorityScore(ctx context.Context, componentID types.ComponentID, category types.CategoryID, lookbackDays int) float64 {
	lookback := uc.parent.policy.Lookback
	if lookbackDays > 0 {
		lookback = time.Duration(lookbackDays) * 24 * time.Hour
	}

	count, err := uc.parent.ledger.CountUsage(ctx, componentID, category, uc.parent.now().Add(-lookback))
	if err != nil {
		logging.From(ctx).Warn("usage ledger unavailable, returning neutral priority",
			"error", err.Error(),
			"componentID", componentID,
		)
		return 1.0
	}

	return model.NoveltyMultiplier(count)
}

// ScoredComponent is one entry of a ScoreCandidates ranking
type ScoredComponent struct {
	ComponentID types.ComponentID
	Relevance   float64
	Novelty     float64
	Combined    float64
}

// ScoreCandidates ranks components by an externally supplied relevance
// score blended with novelty priority: combined = relevance*0.6 +
// novelty*0.4. Components missing from the relevance map default to 1.0,
// so callers without a vector index rank by novelty alone.
func (uc *TrackerUseCase) ScoreCandidates(ctx context.Context, ids []types.ComponentID, category types.CategoryID, relevance map[types.ComponentID]float64) []ScoredComponent {
	scored := make([]ScoredComponent, 0, len(ids))
	for _, id := range ids {
		rel, ok := relevance[id]
		if !ok {
			rel = 1.0
		}
		novelty := uc.PriorityScore(ctx, id, category, 0)
		scored = append(scored, ScoredComponent{
			ComponentID: id,
			Relevance:   rel,
			Novelty:     novelty,
			Combined:    rel*0.6 + novelty*0.4,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Combined != scored[j].Combined {
			return scored[i].Combined > scored[j].Combined
		}
		return scored[i].ComponentID < scored[j].ComponentID
	})

	return scored
}

// IsDuplicateLayout reports whether a generation with the exact layout
// hash already exists in the ledger
func (uc *TrackerUseCase) IsDuplicateLayout(ctx context.Context, hash types.LayoutHash) (bool, error) {
	existing, err := uc.parent.ledger.GetByLayoutHash(ctx, hash)
	if err != nil {
		return false, goerr.Wrap(err, "failed to check layout hash", goerr.V("hash", hash))
	}
	return existing != nil, nil
}

// LayoutSimilarity pairs a prior generation with its Jaccard similarity to
// a proposed layout
type LayoutSimilarity struct {
	Generation *model.GenerationRecord
	Similarity float64
}

// SimilarLayouts returns recent generations of the category whose
// section-to-component pair sets have Jaccard similarity at or above the
// threshold, most similar first.
func (uc *TrackerUseCase) SimilarLayouts(ctx context.Context, category types.CategoryID, layout model.Layout, threshold float64) ([]*LayoutSimilarity, error) {
	since := uc.parent.now().Add(-uc.parent.policy.Lookback)
	recent, err := uc.parent.ledger.ListRecentGenerations(ctx, category, since, similarLayoutScan)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list recent generations", goerr.V("category", category))
	}

	var similar []*LayoutSimilarity
	for _, record := range recent {
		score := model.JaccardSimilarity(layout, record.Components)
		if score >= threshold {
			similar = append(similar, &LayoutSimilarity{
				Generation: record,
				Similarity: score,
			})
		}
	}

	sort.Slice(similar, func(i, j int) bool {
		if similar[i].Similarity != similar[j].Similarity {
			return similar[i].Similarity > similar[j].Similarity
		}
		return similar[i].Generation.ID < similar[j].Generation.ID
	})

	return similar, nil
}

// Prune deletes ledger rows older than the retention horizon. A layout last
// seen before the horizon may reappear afterwards.
func (uc *TrackerUseCase) Prune(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = uc.parent.policy.RetentionDays
	}

	cutoff := uc.parent.now().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	pruned, err := uc.parent.ledger.PruneOlderThan(ctx, cutoff)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to prune ledger", goerr.V("retentionDays", retentionDays))
	}

	logging.From(ctx).Info("pruned generation ledger",
		"retentionDays", retentionDays,
		"pruned", pruned,
	)
	return pruned, nil
}
