package cli

import (
	"testing"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/gt"
	"github.com/vlah-sh/mosaic/pkg/domain/model"
)

func TestIndexConfigCoversQueries(t *testing.T) {
	cfg := getIndexConfig()

	byName := map[string]fireconf.Collection{}
	for _, coll := range cfg.Collections {
		byName[coll.Name] = coll
	}

	t.Run("components has a section-scoped vector index", func(t *testing.T) {
		coll, ok := byName["components"]
		gt.Bool(t, ok).True()
		gt.Array(t, coll.Indexes).Length(1).Required()

		fields := coll.Indexes[0].Fields
		gt.Array(t, fields).Length(2).Required()
		gt.Value(t, fields[0].Path).Equal("SectionType")
		gt.Value(t, fields[1].Path).Equal("Embedding")
		gt.Value(t, fields[1].Vector).NotNil().Required()
		gt.Value(t, fields[1].Vector.Dimension).Equal(model.EmbeddingDimension)
	})

	t.Run("usage_events supports the usage count filter", func(t *testing.T) {
		coll, ok := byName["usage_events"]
		gt.Bool(t, ok).True()
		gt.Array(t, coll.Indexes).Length(1).Required()

		fields := coll.Indexes[0].Fields
		gt.Array(t, fields).Length(3).Required()
		gt.Value(t, fields[0].Path).Equal("ComponentID")
		gt.Value(t, fields[1].Path).Equal("Category")
		gt.Value(t, fields[2].Path).Equal("UsedAt")
	})

	t.Run("generations supports the recent generations query", func(t *testing.T) {
		coll, ok := byName["generations"]
		gt.Bool(t, ok).True()
		gt.Array(t, coll.Indexes).Length(1).Required()

		fields := coll.Indexes[0].Fields
		gt.Array(t, fields).Length(2).Required()
		gt.Value(t, fields[0].Path).Equal("Category")
		gt.Value(t, fields[1].Path).Equal("CreatedAt")
		gt.Value(t, fields[1].Order).Equal(fireconf.OrderDescending)
	})
}
