package usecase

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vlah-sh/mosaic/pkg/domain/model"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
	"github.com/vlah-sh/mosaic/pkg/utils/logging"
)

// LayoutUseCase guards against two generations producing the literal same
// combination of components.
type LayoutUseCase struct {
	parent *UseCases
}

// FinalizeResult is the outcome of a uniqueness check
type FinalizeResult struct {
	Layout      model.Layout
	Hash        types.LayoutHash
	Substituted []types.SectionType
}

// FinalizeLayout computes the layout fingerprint and checks the ledger for
// a prior generation with the same hash. On a collision it runs one bounded
// substitution pass over the configured section priority order and
// recomputes the hash. It deliberately does not loop to convergence: a
// residual, very low probability of persistent duplication is accepted over
// unbounded retries under catalog scarcity.
func (uc *LayoutUseCase) FinalizeLayout(ctx context.Context, category types.CategoryID, layout model.Layout) (*FinalizeResult, error) {
	if err := category.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid category")
	}
	if len(layout) == 0 {
		return nil, goerr.New("layout is empty")
	}

	hash := layout.Hash()

	existing, err := uc.parent.ledger.GetByLayoutHash(ctx, hash)
	if err != nil {
		// Treat an unreachable ledger as "no collision": uniqueness is
		// best-effort and must not fail the generation.
		logging.From(ctx).Warn("layout uniqueness check unavailable",
			"error", err.Error(),
			"hash", hash,
		)
		return &FinalizeResult{Layout: layout, Hash: hash}, nil
	}
	if existing == nil {
		return &FinalizeResult{Layout: layout, Hash: hash}, nil
	}

	logging.From(ctx).Info("duplicate layout detected, forcing substitution",
		"hash", hash,
		"category", category,
		"priorGeneration", existing.ID,
	)

	revised := layout.Clone()
	var substituted []types.SectionType
	for _, section := range uc.parent.policy.SectionPriority {
		if len(substituted) >= uc.parent.policy.MaxSubstitutions {
			break
		}
		current, ok := revised[section]
		if !ok {
			continue
		}

		alternative := uc.pickAlternative(ctx, section, category, current)
		if alternative == nil {
			continue
		}

		revised[section] = alternative.ID
		substituted = append(substituted, section)
	}

	return &FinalizeResult{
		Layout:      revised,
		Hash:        revised.Hash(),
		Substituted: substituted,
	}, nil
}

// pickAlternative returns the least-recently-used component of the section
// that differs from the current assignment. Cooldown is bypassed only when
// no eligible alternative exists: cooldown is a soft preference, layout
// uniqueness is closer to a hard requirement.
func (uc *LayoutUseCase) pickAlternative(ctx context.Context, section types.SectionType, category types.CategoryID, current types.ComponentID) *model.Component {
	now := uc.parent.now()

	candidates, err := uc.parent.catalog.ListEligible(ctx, section, category, now)
	if err != nil {
		logging.From(ctx).Warn("failed to list substitution candidates",
			"error", err.Error(),
			"section", section,
		)
		return nil
	}
	candidates = excludeComponent(candidates, current)

	if len(candidates) == 0 {
		all, err := uc.parent.catalog.ListBySection(ctx, section)
		if err != nil {
			logging.From(ctx).Warn("failed to list components for cooldown bypass",
				"error", err.Error(),
				"section", section,
			)
			return nil
		}
		for _, component := range all {
			if component.ID != current && component.CompatibleWith(category) {
				candidates = append(candidates, component)
			}
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return lessRecentlyUsed(candidates[i], candidates[j])
	})

	return candidates[0]
}

func excludeComponent(components []*model.Component, id types.ComponentID) []*model.Component {
	filtered := components[:0]
	for _, component := range components {
		if component.ID != id {
			filtered = append(filtered, component)
		}
	}
	return filtered
}

// lessRecentlyUsed orders never-used components first, then by oldest
// LastUsedAt, with lexicographic ID as the deterministic tiebreak
func lessRecentlyUsed(a, b *model.Component) bool {
	switch {
	case a.LastUsedAt == nil && b.LastUsedAt != nil:
		return true
	case a.LastUsedAt != nil && b.LastUsedAt == nil:
		return false
	case a.LastUsedAt != nil && b.LastUsedAt != nil:
		if !a.LastUsedAt.Equal(*b.LastUsedAt) {
			return a.LastUsedAt.Before(*b.LastUsedAt)
		}
	}
	return a.ID < b.ID
}
