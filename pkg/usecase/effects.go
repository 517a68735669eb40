package usecase

import (
	"context"

	"github.com/vlah-sh/mosaic/pkg/domain/model"
	"github.com/vlah-sh/mosaic/pkg/utils/logging"
)

// EffectUseCase diversifies presentation-level visual effects. It is the
// lighter analogue of component selection: the same novelty-by-recency
// principle, but over small fixed value pools and a caller-supplied recent
// history instead of a similarity index and a global ledger. It never
// blocks and never fails.
type EffectUseCase struct {
	parent *UseCases
}

// EffectHistory holds the recently used values per attribute kind,
// supplied by the caller
type EffectHistory map[model.EffectAttribute][]string

// EffectAssignment maps attribute kinds to their chosen effect values
type EffectAssignment map[model.EffectAttribute]string

// DiversifyEffects assigns one effect value per attribute in pools.
// Unassigned attributes get a weighted random pool value where recently
// frequent values weigh less; already-assigned values are kept, except
// that a fixed probability triggers a swap to a different pool value.
// A nil pools argument uses the policy pools.
func (uc *EffectUseCase) DiversifyEffects(ctx context.Context, pools model.EffectPools, recent EffectHistory, current EffectAssignment) EffectAssignment {
	if pools == nil {
		pools = uc.parent.policy.EffectPools
	}

	assignment := make(EffectAssignment, len(pools))
	for attribute, pool := range pools {
		if len(pool) == 0 {
			logging.From(ctx).Warn("empty effect pool", "attribute", attribute)
			assignment[attribute] = ""
			continue
		}

		assigned, ok := current[attribute]
		if ok && assigned != "" {
			if uc.parent.rng.Float64() < uc.parent.policy.EffectSwapProbability {
				assignment[attribute] = uc.weightedPick(pool, recent[attribute], assigned)
			} else {
				assignment[attribute] = assigned
			}
			continue
		}

		assignment[attribute] = uc.weightedPick(pool, recent[attribute], "")
	}

	return assignment
}

// weightedPick draws a pool value with weight inversely proportional to
// its recent usage count: weight = max(1, maxCount+1-count). A non-empty
// exclude value is left out unless it is the only pool entry.
func (uc *EffectUseCase) weightedPick(pool []string, recent []string, exclude string) string {
	counts := make(map[string]int, len(pool))
	var maxCount int
	for _, value := range recent {
		counts[value]++
		if counts[value] > maxCount {
			maxCount = counts[value]
		}
	}

	type weighted struct {
		value  string
		weight int
	}
	var candidates []weighted
	var total int
	for _, value := range pool {
		if value == exclude {
			continue
		}
		weight := maxCount + 1 - counts[value]
		if weight < 1 {
			weight = 1
		}
		candidates = append(candidates, weighted{value: value, weight: weight})
		total += weight
	}

	if len(candidates) == 0 {
		return pool[0]
	}

	draw := uc.parent.rng.Intn(total)
	for _, candidate := range candidates {
		draw -= candidate.weight
		if draw < 0 {
			return candidate.value
		}
	}

	return candidates[len(candidates)-1].value
}
