package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/vlah-sh/mosaic/pkg/domain/model"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
	"github.com/vlah-sh/mosaic/pkg/repository/memory"
	"github.com/vlah-sh/mosaic/pkg/usecase"
)

func TestMarkUsedSchedulesCooldown(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	seedComponent(t, repo, "hero-split-01", "hero", nil, 5)

	uc := usecase.New(repo.Catalog(), repo.Ledger(), usecase.WithClock(fixedClock))

	updated, err := uc.Cooldown.MarkUsed(ctx, "hero-split-01")
	gt.NoError(t, err).Required()
	gt.Value(t, updated.UsageCount).Equal(int64(6))
	gt.Value(t, updated.LastUsedAt).NotNil()
	gt.Bool(t, updated.LastUsedAt.Equal(testNow)).True()
	// 6 uses at a 4h base gives a 24h window, still under the 72h cap.
	gt.Value(t, updated.CooldownUntil).NotNil()
	gt.Bool(t, updated.CooldownUntil.Equal(testNow.Add(24*time.Hour))).True()
}

func TestMarkUsedCapsCooldown(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	seedComponent(t, repo, "hero-split-01", "hero", nil, 50)

	uc := usecase.New(repo.Catalog(), repo.Ledger(), usecase.WithClock(fixedClock))

	updated, err := uc.Cooldown.MarkUsed(ctx, "hero-split-01")
	gt.NoError(t, err).Required()
	gt.Value(t, updated.UsageCount).Equal(int64(51))
	gt.Bool(t, updated.CooldownUntil.Equal(testNow.Add(72*time.Hour))).True()
}

func TestMarkUsedCooldownGrowsMonotonically(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	seedComponent(t, repo, "hero-split-01", "hero", nil, 0)

	uc := usecase.New(repo.Catalog(), repo.Ledger(), usecase.WithClock(fixedClock))

	var prev time.Duration
	for i := 0; i < 30; i++ {
		updated, err := uc.Cooldown.MarkUsed(ctx, "hero-split-01")
		gt.NoError(t, err).Required()

		window := updated.CooldownUntil.Sub(testNow)
		gt.Bool(t, window > 0).True()
		gt.Bool(t, window <= 72*time.Hour).True()
		gt.Bool(t, window >= prev).True()
		prev = window
	}
}

func TestMarkUsedUnknownComponent(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	uc := usecase.New(repo.Catalog(), repo.Ledger(), usecase.WithClock(fixedClock))

	_, err := uc.Cooldown.MarkUsed(ctx, "no-such-component")
	gt.Error(t, err)
}

func TestMarkLayoutUsedToleratesFailures(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	seedComponent(t, repo, "hero-split-01", "hero", nil, 0)

	uc := usecase.New(repo.Catalog(), repo.Ledger(), usecase.WithClock(fixedClock))

	// One component of the layout does not exist; the other must still be
	// marked.
	uc.Cooldown.MarkLayoutUsed(ctx, model.Layout{
		"hero":  "hero-split-01",
		"about": "about-missing",
	})

	updated, err := repo.Catalog().Get(ctx, types.ComponentID("hero-split-01"))
	gt.NoError(t, err).Required()
	gt.Value(t, updated.UsageCount).Equal(int64(1))
	gt.Value(t, updated.CooldownUntil).NotNil()
}
