package usecase

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vlah-sh/mosaic/pkg/domain/model"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
	"github.com/vlah-sh/mosaic/pkg/utils/logging"
)

// SelectionUseCase is the primary entry point of the engine: candidate
// retrieval, diversity re-ranking and winner selection for one page section.
type SelectionUseCase struct {
	parent *UseCases
}

// SelectInput describes one section selection request. QueryVector takes
// precedence over QueryText; when neither yields a vector the retrieval
// degrades to usage-only ranking.
type SelectInput struct {
	Section     types.SectionType
	Category    types.CategoryID
	QueryVector []float32
	QueryText   string
}

// Selection is the outcome of a successful section selection
type Selection struct {
	Component *model.Component
	Score     model.CandidateScore
	Mode      RetrievalMode
}

// SelectComponent retrieves candidates for the section, re-ranks them by
// similarity x novelty and returns the winner. A nil Selection with a nil
// error means no eligible candidate exists; the caller decides whether to
// skip the section or relax cooldown.
func (uc *SelectionUseCase) SelectComponent(ctx context.Context, input SelectInput) (*Selection, error) {
	if err := input.Section.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid section type")
	}
	if err := input.Category.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid category")
	}

	vector := uc.queryVector(ctx, input)
	candidates, mode, err := uc.retrieve(ctx, input.Section, input.Category, vector)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		logging.From(ctx).Debug("no eligible candidates for section",
			"section", input.Section,
			"category", input.Category,
		)
		return nil, nil
	}

	winner := uc.pick(ctx, candidates, input.Category)
	winner.Mode = mode
	return winner, nil
}

// queryVector resolves a query embedding from the input. Embedding
// failures degrade to nil: never fail a request over an unreachable
// embedding producer.
func (uc *SelectionUseCase) queryVector(ctx context.Context, input SelectInput) []float32 {
	if len(input.QueryVector) > 0 {
		return input.QueryVector
	}
	if input.QueryText == "" || uc.parent.embedder == nil {
		return nil
	}

	vector, err := uc.parent.embedder.Embed(ctx, input.QueryText)
	if err != nil {
		logging.From(ctx).Warn("embedding producer unavailable, falling back to usage-only retrieval",
			"error", err.Error(),
			"section", input.Section,
		)
		return nil
	}
	return vector
}

// retrieve returns the top-K candidates with similarity scores. With a
// query vector it ranks by cosine similarity; without one it draws
// low-usage eligible components with a neutral similarity so downstream
// scoring becomes pure novelty ranking.
func (uc *SelectionUseCase) retrieve(ctx context.Context, section types.SectionType, category types.CategoryID, vector []float32) ([]*model.ComponentMatch, RetrievalMode, error) {
	topK := uc.parent.policy.TopK
	now := uc.parent.now()

	if len(vector) > 0 {
		matches, err := uc.parent.catalog.FindSimilar(ctx, section, category, vector, topK, now)
		if err == nil {
			return matches, RetrievalVectorBacked, nil
		}
		logging.From(ctx).Warn("similarity query failed, falling back to usage-only retrieval",
			"error", err.Error(),
			"section", section,
		)
	}

	eligible, err := uc.parent.catalog.ListEligible(ctx, section, category, now)
	if err != nil {
		return nil, RetrievalUsageOnly, goerr.Wrap(err, "failed to list eligible components",
			goerr.V("section", section),
			goerr.V("category", category),
		)
	}

	// Prefer rarely used components, breaking ties uniformly at random
	// so the fallback does not always surface the same IDs.
	uc.parent.rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].UsageCount < eligible[j].UsageCount
	})

	if topK < len(eligible) {
		eligible = eligible[:topK]
	}

	matches := make([]*model.ComponentMatch, len(eligible))
	for i, component := range eligible {
		matches[i] = &model.ComponentMatch{
			Component:  component,
			Similarity: model.NeutralSimilarity,
		}
	}

	return matches, RetrievalUsageOnly, nil
}

// pick applies the novelty multiplier to each candidate and returns the
// highest scoring one. Given identical candidates and usage histories the
// result is deterministic: ties fall back to lower usage count, then
// lexicographic component ID.
func (uc *SelectionUseCase) pick(ctx context.Context, candidates []*model.ComponentMatch, category types.CategoryID) *Selection {
	since := uc.parent.now().Add(-uc.parent.policy.Lookback)

	var best *Selection
	for _, match := range candidates {
		count, err := uc.parent.ledger.CountUsage(ctx, match.Component.ID, category, since)
		novelty := 1.0
		if err != nil {
			logging.From(ctx).Warn("usage ledger unavailable, skipping novelty scoring",
				"error", err.Error(),
				"componentID", match.Component.ID,
			)
		} else {
			novelty = model.NoveltyMultiplier(count)
		}

		candidate := &Selection{
			Component: match.Component,
			Score: model.CandidateScore{
				ComponentID: match.Component.ID,
				Similarity:  match.Similarity,
				Novelty:     novelty,
			},
		}

		if best == nil || better(candidate, best) {
			best = candidate
		}
	}

	return best
}

func better(a, b *Selection) bool {
	if a.Score.FinalScore() != b.Score.FinalScore() {
		return a.Score.FinalScore() > b.Score.FinalScore()
	}
	if a.Component.UsageCount != b.Component.UsageCount {
		return a.Component.UsageCount < b.Component.UsageCount
	}
	return a.Component.ID < b.Component.ID
}
