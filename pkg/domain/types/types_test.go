package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
)

func TestCategoryIDValidate(t *testing.T) {
	valid := []types.CategoryID{"saas", "restaurant", "real-estate", "web3"}
	for _, id := range valid {
		gt.NoError(t, id.Validate())
	}

	invalid := []types.CategoryID{"", "SaaS", "real estate", "-saas", "saas-", "café"}
	for _, id := range invalid {
		gt.Error(t, id.Validate())
	}
}

func TestSectionTypeValidate(t *testing.T) {
	for _, section := range types.DefaultSectionPriority {
		gt.NoError(t, section.Validate())
	}

	gt.Error(t, types.SectionType("").Validate())
	gt.Error(t, types.SectionType("Hero").Validate())
}

func TestComponentIDValidate(t *testing.T) {
	gt.NoError(t, types.ComponentID("hero-split-01").Validate())
	gt.Error(t, types.ComponentID("").Validate())
}

func TestNewGenerationID(t *testing.T) {
	a := types.NewGenerationID()
	b := types.NewGenerationID()

	gt.String(t, a.String()).NotEqual("")
	gt.Value(t, a).NotEqual(b)
}
