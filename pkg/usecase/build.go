package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vlah-sh/mosaic/pkg/domain/model"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
	"golang.org/x/sync/errgroup"
)

// SectionRequest asks for one component for one page section
type SectionRequest struct {
	Section     types.SectionType
	QueryText   string
	QueryVector []float32
}

// BuildResult is the outcome of a full layout build
type BuildResult struct {
	GenerationID types.GenerationID
	Layout       model.Layout
	Hash         types.LayoutHash
	Substituted  []types.SectionType
	Skipped      []types.SectionType
}

// BuildLayout is the in-process orchestration path: it selects one
// component per requested section concurrently, finalizes the layout
// against the duplicate guard, schedules cooldowns and records the
// generation. Sections with no eligible candidate are skipped rather than
// failing the build.
func (uc *UseCases) BuildLayout(ctx context.Context, category types.CategoryID, styleTag types.StyleTag, requests []SectionRequest) (*BuildResult, error) {
	if len(requests) == 0 {
		return nil, goerr.New("no sections requested")
	}

	var mu sync.Mutex
	layout := make(model.Layout, len(requests))
	var skipped []types.SectionType

	g, gctx := errgroup.WithContext(ctx)
	for _, req := range requests {
		g.Go(func() error {
			selection, err := uc.Selection.SelectComponent(gctx, SelectInput{
				Section:     req.Section,
				Category:    category,
				QueryVector: req.QueryVector,
				QueryText:   req.QueryText,
			})
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			if selection == nil {
				skipped = append(skipped, req.Section)
				return nil
			}
			layout[req.Section] = selection.Component.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to resolve sections", goerr.V("category", category))
	}

	if len(layout) == 0 {
		return nil, goerr.New("no section could be filled", goerr.V("category", category))
	}

	finalized, err := uc.Layout.FinalizeLayout(ctx, category, layout)
	if err != nil {
		return nil, err
	}

	uc.Cooldown.MarkLayoutUsed(ctx, finalized.Layout)

	generationID := types.NewGenerationID()
	if err := uc.Tracker.RecordGeneration(ctx, generationID, category, styleTag, finalized.Layout); err != nil {
		return nil, err
	}

	return &BuildResult{
		GenerationID: generationID,
		Layout:       finalized.Layout,
		Hash:         finalized.Hash,
		Substituted:  finalized.Substituted,
		Skipped:      skipped,
	}, nil
}
