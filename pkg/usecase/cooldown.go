package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vlah-sh/mosaic/pkg/domain/model"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
	"github.com/vlah-sh/mosaic/pkg/utils/logging"
)

// CooldownUseCase schedules the deprioritization window after a component
// is used. The usage increment and cooldown update are applied as one
// atomic conditional update in the catalog store, so concurrent requests
// selecting the same component cannot lose updates.
type CooldownUseCase struct {
	parent *UseCases
}

// MarkUsed increments the component's usage count and sets
// CooldownUntil = now + min(cap, base*newCount). Frequently reused
// components accrue longer exclusion windows, bounded so no component is
// ever permanently locked out.
func (uc *CooldownUseCase) MarkUsed(ctx context.Context, id types.ComponentID) (*model.Component, error) {
	updated, err := uc.parent.catalog.MarkUsed(ctx, id, uc.parent.now(), uc.parent.policy.CooldownBase, uc.parent.policy.CooldownCap)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to mark component used", goerr.V("componentID", id))
	}
	return updated, nil
}

// MarkLayoutUsed applies MarkUsed to every component of a finalized
// layout. Failures are logged, not propagated: a stale cooldown degrades
// diversity quality but must not fail the generation.
func (uc *CooldownUseCase) MarkLayoutUsed(ctx context.Context, layout model.Layout) {
	for _, componentID := range layout {
		if _, err := uc.MarkUsed(ctx, componentID); err != nil {
			logging.From(ctx).Warn("failed to record component cooldown",
				"error", err.Error(),
				"componentID", componentID,
			)
		}
	}
}
