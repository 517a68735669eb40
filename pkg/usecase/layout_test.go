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

func recordLayout(t *testing.T, repo *memory.Memory, category types.CategoryID, layout model.Layout) {
	t.Helper()
	gt.NoError(t, repo.Ledger().PutGeneration(context.Background(), &model.GenerationRecord{
		ID:         types.NewGenerationID(),
		Category:   category,
		Components: layout.Clone(),
		LayoutHash: layout.Hash(),
		CreatedAt:  testNow.Add(-time.Hour),
	})).Required()
}

func TestFinalizeLayoutNoCollision(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	uc := usecase.New(repo.Catalog(), repo.Ledger(), usecase.WithClock(fixedClock))

	layout := model.Layout{"hero": "hero-split-01", "about": "about-team-03"}

	result, err := uc.Layout.FinalizeLayout(ctx, "saas", layout)
	gt.NoError(t, err).Required()
	gt.Value(t, result.Hash).Equal(layout.Hash())
	gt.Value(t, result.Layout["hero"]).Equal(types.ComponentID("hero-split-01"))
	gt.Array(t, result.Substituted).Length(0)
}

func TestFinalizeLayoutRepairsDuplicate(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	seedComponent(t, repo, "hero-split-01", "hero", nil, 3)
	seedComponent(t, repo, "hero-video-07", "hero", nil, 0)
	seedComponent(t, repo, "about-team-03", "about", nil, 2)

	layout := model.Layout{"hero": "hero-split-01", "about": "about-team-03"}
	recordLayout(t, repo, "saas", layout)

	uc := usecase.New(repo.Catalog(), repo.Ledger(), usecase.WithClock(fixedClock))

	result, err := uc.Layout.FinalizeLayout(ctx, "saas", layout)
	gt.NoError(t, err).Required()
	gt.Value(t, result.Hash).NotEqual(layout.Hash())
	gt.Array(t, result.Substituted).Length(1)
	gt.Value(t, result.Substituted[0]).Equal(types.SectionType("hero"))
	gt.Value(t, result.Layout["hero"]).Equal(types.ComponentID("hero-video-07"))
	gt.Value(t, result.Layout["about"]).Equal(types.ComponentID("about-team-03"))
	// Input layout is not mutated.
	gt.Value(t, layout["hero"]).Equal(types.ComponentID("hero-split-01"))
}

func TestFinalizeLayoutSubstitutionBound(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	sections := []types.SectionType{"hero", "about", "services", "gallery"}
	layout := model.Layout{}
	for _, section := range sections {
		current := types.ComponentID(string(section) + "-current")
		alternative := types.ComponentID(string(section) + "-alt")
		seedComponent(t, repo, current, section, nil, 1)
		seedComponent(t, repo, alternative, section, nil, 0)
		layout[section] = current
	}
	recordLayout(t, repo, "saas", layout)

	uc := usecase.New(repo.Catalog(), repo.Ledger(), usecase.WithClock(fixedClock))

	result, err := uc.Layout.FinalizeLayout(ctx, "saas", layout)
	gt.NoError(t, err).Required()
	// Default policy replaces at most two sections per repair pass, in
	// priority order.
	gt.Array(t, result.Substituted).Length(2)
	gt.Value(t, result.Substituted[0]).Equal(types.SectionType("hero"))
	gt.Value(t, result.Substituted[1]).Equal(types.SectionType("about"))
	gt.Value(t, result.Layout["services"]).Equal(types.ComponentID("services-current"))
}

func TestFinalizeLayoutBypassesCooldownWhenNecessary(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	cooling := testNow.Add(time.Hour)
	seedComponent(t, repo, "hero-split-01", "hero", nil, 3)
	gt.NoError(t, repo.Catalog().Put(ctx, &model.Component{
		ID:            "hero-video-07",
		SectionType:   "hero",
		CooldownUntil: &cooling,
	})).Required()

	layout := model.Layout{"hero": "hero-split-01"}
	recordLayout(t, repo, "saas", layout)

	uc := usecase.New(repo.Catalog(), repo.Ledger(), usecase.WithClock(fixedClock))

	result, err := uc.Layout.FinalizeLayout(ctx, "saas", layout)
	gt.NoError(t, err).Required()
	gt.Array(t, result.Substituted).Length(1)
	gt.Value(t, result.Layout["hero"]).Equal(types.ComponentID("hero-video-07"))
}

func TestFinalizeLayoutKeepsLayoutWithoutAlternatives(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	seedComponent(t, repo, "hero-split-01", "hero", nil, 3)

	layout := model.Layout{"hero": "hero-split-01"}
	recordLayout(t, repo, "saas", layout)

	uc := usecase.New(repo.Catalog(), repo.Ledger(), usecase.WithClock(fixedClock))

	result, err := uc.Layout.FinalizeLayout(ctx, "saas", layout)
	gt.NoError(t, err).Required()
	gt.Array(t, result.Substituted).Length(0)
	gt.Value(t, result.Hash).Equal(layout.Hash())
}

func TestFinalizeLayoutValidatesInput(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	uc := usecase.New(repo.Catalog(), repo.Ledger())

	_, err := uc.Layout.FinalizeLayout(ctx, "Bad Category", model.Layout{"hero": "hero-split-01"})
	gt.Error(t, err)

	_, err = uc.Layout.FinalizeLayout(ctx, "saas", model.Layout{})
	gt.Error(t, err)
}
