package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/vlah-sh/mosaic/pkg/domain/model"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
)

func TestLayoutHashDeterministic(t *testing.T) {
	layout := model.Layout{
		"hero":  "hero-split-01",
		"about": "about-team-03",
		"cta":   "cta-banner-02",
	}

	gt.Value(t, layout.Hash()).Equal(layout.Hash())
}

func TestLayoutHashIgnoresInsertionOrder(t *testing.T) {
	a := model.Layout{}
	a["hero"] = "hero-split-01"
	a["about"] = "about-team-03"
	a["cta"] = "cta-banner-02"

	b := model.Layout{}
	b["cta"] = "cta-banner-02"
	b["hero"] = "hero-split-01"
	b["about"] = "about-team-03"

	gt.Value(t, a.Hash()).Equal(b.Hash())
}

func TestLayoutHashChangesOnMutation(t *testing.T) {
	layout := model.Layout{
		"hero":  "hero-split-01",
		"about": "about-team-03",
	}
	original := layout.Hash()

	mutated := layout.Clone()
	mutated["hero"] = "hero-video-07"

	gt.Value(t, mutated.Hash()).NotEqual(original)
	gt.Value(t, layout.Hash()).Equal(original)
}

func TestLayoutPairsSorted(t *testing.T) {
	layout := model.Layout{
		"testimonials": "testimonials-grid-01",
		"about":        "about-team-03",
		"hero":         "hero-split-01",
	}

	gt.Array(t, layout.Pairs()).Equal([]string{
		"about:about-team-03",
		"hero:hero-split-01",
		"testimonials:testimonials-grid-01",
	})
}

func TestLayoutClone(t *testing.T) {
	layout := model.Layout{"hero": "hero-split-01"}
	copied := layout.Clone()
	copied["hero"] = "hero-video-07"

	gt.Value(t, layout["hero"]).Equal(types.ComponentID("hero-split-01"))
}

func TestJaccardSimilarity(t *testing.T) {
	base := model.Layout{
		"hero":  "hero-split-01",
		"about": "about-team-03",
		"cta":   "cta-banner-02",
	}

	t.Run("identical layouts score 1.0", func(t *testing.T) {
		gt.Value(t, model.JaccardSimilarity(base, base.Clone())).Equal(1.0)
	})

	t.Run("disjoint layouts score 0.0", func(t *testing.T) {
		other := model.Layout{
			"hero":  "hero-video-07",
			"about": "about-story-01",
			"cta":   "cta-inline-04",
		}
		gt.Value(t, model.JaccardSimilarity(base, other)).Equal(0.0)
	})

	t.Run("partial overlap", func(t *testing.T) {
		other := base.Clone()
		other["hero"] = "hero-video-07"
		// Two shared pairs out of four distinct pairs.
		gt.Value(t, model.JaccardSimilarity(base, other)).Equal(0.5)
	})

	t.Run("both empty layouts score 1.0", func(t *testing.T) {
		gt.Value(t, model.JaccardSimilarity(model.Layout{}, model.Layout{})).Equal(1.0)
	})
}
