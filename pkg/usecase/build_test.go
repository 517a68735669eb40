package usecase_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
	"github.com/vlah-sh/mosaic/pkg/repository/memory"
	"github.com/vlah-sh/mosaic/pkg/usecase"
)

func TestBuildLayout(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	seedComponent(t, repo, "hero-split-01", "hero", []float32{1, 0, 0}, 0)
	seedComponent(t, repo, "about-team-03", "about", []float32{0, 1, 0}, 0)
	seedComponent(t, repo, "cta-banner-02", "cta", []float32{0, 0, 1}, 0)

	uc := usecase.New(repo.Catalog(), repo.Ledger(),
		usecase.WithClock(fixedClock),
		usecase.WithRand(rand.New(rand.NewSource(1))),
	)

	result, err := uc.BuildLayout(ctx, "saas", "minimal", []usecase.SectionRequest{
		{Section: "hero"},
		{Section: "about"},
		{Section: "cta"},
	})
	gt.NoError(t, err).Required()
	gt.Value(t, result.GenerationID.String()).NotEqual("")
	gt.Value(t, len(result.Layout)).Equal(3)
	gt.Value(t, result.Layout["hero"]).Equal(types.ComponentID("hero-split-01"))
	gt.Array(t, result.Skipped).Length(0)
	gt.Value(t, result.Hash).Equal(result.Layout.Hash())

	// The build records the generation and schedules cooldowns.
	record, err := repo.Ledger().GetByLayoutHash(ctx, result.Hash)
	gt.NoError(t, err).Required()
	gt.Value(t, record).NotNil().Required()
	gt.Value(t, record.ID).Equal(result.GenerationID)

	hero, err := repo.Catalog().Get(ctx, "hero-split-01")
	gt.NoError(t, err).Required()
	gt.Value(t, hero.UsageCount).Equal(int64(1))
	gt.Value(t, hero.CooldownUntil).NotNil()
}

func TestBuildLayoutSkipsEmptySections(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	seedComponent(t, repo, "hero-split-01", "hero", nil, 0)

	uc := usecase.New(repo.Catalog(), repo.Ledger(),
		usecase.WithClock(fixedClock),
		usecase.WithRand(rand.New(rand.NewSource(1))),
	)

	result, err := uc.BuildLayout(ctx, "saas", "", []usecase.SectionRequest{
		{Section: "hero"},
		{Section: "pricing"},
	})
	gt.NoError(t, err).Required()
	gt.Value(t, len(result.Layout)).Equal(1)
	gt.Array(t, result.Skipped).Length(1)
	gt.Value(t, result.Skipped[0]).Equal(types.SectionType("pricing"))
}

func TestBuildLayoutRequiresSections(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	uc := usecase.New(repo.Catalog(), repo.Ledger())

	_, err := uc.BuildLayout(ctx, "saas", "", nil)
	gt.Error(t, err)
}

func TestBuildLayoutFailsWhenNothingEligible(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	uc := usecase.New(repo.Catalog(), repo.Ledger(),
		usecase.WithRand(rand.New(rand.NewSource(1))),
	)

	_, err := uc.BuildLayout(ctx, "saas", "", []usecase.SectionRequest{
		{Section: "hero"},
	})
	gt.Error(t, err)
}

func TestBuildLayoutAvoidsDuplicateOfPriorGeneration(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	seedComponent(t, repo, "hero-split-01", "hero", nil, 0)
	seedComponent(t, repo, "hero-video-07", "hero", nil, 5)
	seedComponent(t, repo, "about-team-03", "about", nil, 0)

	uc := usecase.New(repo.Catalog(), repo.Ledger(),
		usecase.WithClock(fixedClock),
		usecase.WithRand(rand.New(rand.NewSource(1))),
	)

	first, err := uc.BuildLayout(ctx, "saas", "", []usecase.SectionRequest{
		{Section: "hero"},
		{Section: "about"},
	})
	gt.NoError(t, err).Required()

	// The components chosen first are now cooling down, but a forced
	// rebuild of the same combination must still produce a different hash.
	second, err := uc.BuildLayout(ctx, "saas", "", []usecase.SectionRequest{
		{Section: "hero"},
		{Section: "about"},
	})
	gt.NoError(t, err).Required()
	gt.Value(t, second.Hash).NotEqual(first.Hash)
}
