package firestore

import (
	"context"
	"math"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/vlah-sh/mosaic/pkg/domain/model"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// componentDoc is the Firestore document representation of model.Component.
// Embedding is stored as firestore.Vector32 for FindNearest vector search.
type componentDoc struct {
	ID            string             `firestore:"ID"`
	SectionType   string             `firestore:"SectionType"`
	CategoryAllow []string           `firestore:"CategoryAllow"`
	CategoryDeny  []string           `firestore:"CategoryDeny"`
	Embedding     firestore.Vector32 `firestore:"Embedding,omitempty"`
	UsageCount    int64              `firestore:"UsageCount"`
	LastUsedAt    *time.Time         `firestore:"LastUsedAt"`
	CooldownUntil *time.Time         `firestore:"CooldownUntil"`
}

func toComponentDoc(c *model.Component) *componentDoc {
	doc := &componentDoc{
		ID:            string(c.ID),
		SectionType:   string(c.SectionType),
		UsageCount:    c.UsageCount,
		LastUsedAt:    c.LastUsedAt,
		CooldownUntil: c.CooldownUntil,
	}
	if c.CategoryAllow != nil {
		doc.CategoryAllow = make([]string, len(c.CategoryAllow))
		for i, id := range c.CategoryAllow {
			doc.CategoryAllow[i] = string(id)
		}
	}
	for _, id := range c.CategoryDeny {
		doc.CategoryDeny = append(doc.CategoryDeny, string(id))
	}
	if len(c.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(c.Embedding)
	}
	return doc
}

func fromComponentDoc(d *componentDoc) *model.Component {
	c := &model.Component{
		ID:            types.ComponentID(d.ID),
		SectionType:   types.SectionType(d.SectionType),
		UsageCount:    d.UsageCount,
		LastUsedAt:    d.LastUsedAt,
		CooldownUntil: d.CooldownUntil,
	}
	if d.CategoryAllow != nil {
		c.CategoryAllow = make([]types.CategoryID, len(d.CategoryAllow))
		for i, id := range d.CategoryAllow {
			c.CategoryAllow[i] = types.CategoryID(id)
		}
	}
	for _, id := range d.CategoryDeny {
		c.CategoryDeny = append(c.CategoryDeny, types.CategoryID(id))
	}
	if len(d.Embedding) > 0 {
		c.Embedding = []float32(d.Embedding)
	}
	return c
}

type catalogRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newCatalogRepository(client *firestore.Client) *catalogRepository {
	return &catalogRepository{client: client}
}

func (r *catalogRepository) componentsCollection() *firestore.CollectionRef {
	name := "components"
	if r.collectionPrefix != "" {
		name = r.collectionPrefix + "_components"
	}
	return r.client.Collection(name)
}

func (r *catalogRepository) Put(ctx context.Context, component *model.Component) error {
	if err := component.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid component")
	}

	docRef := r.componentsCollection().Doc(string(component.ID))
	if _, err := docRef.Set(ctx, toComponentDoc(component)); err != nil {
		return goerr.Wrap(err, "failed to put component", goerr.V("componentID", component.ID))
	}

	return nil
}

func (r *catalogRepository) Get(ctx context.Context, id types.ComponentID) (*model.Component, error) {
	doc, err := r.componentsCollection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "component not found", goerr.V("componentID", id))
		}
		return nil, goerr.Wrap(err, "failed to get component", goerr.V("componentID", id))
	}

	var d componentDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal component", goerr.V("componentID", id))
	}

	return fromComponentDoc(&d), nil
}

func (r *catalogRepository) ListBySection(ctx context.Context, section types.SectionType) ([]*model.Component, error) {
	iter := r.componentsCollection().
		Where("SectionType", "==", string(section)).
		Documents(ctx)
	defer iter.Stop()

	components := make([]*model.Component, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate components", goerr.V("section", section))
		}

		var d componentDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal component")
		}

		components = append(components, fromComponentDoc(&d))
	}

	return components, nil
}

// ListEligible filters category compatibility and cooldown in process.
// The allowlist/denylist semantics and the nullable cooldown field cannot
// be expressed as a single Firestore query.
func (r *catalogRepository) ListEligible(ctx context.Context, section types.SectionType, category types.CategoryID, now time.Time) ([]*model.Component, error) {
	all, err := r.ListBySection(ctx, section)
	if err != nil {
		return nil, err
	}

	eligible := make([]*model.Component, 0, len(all))
	for _, component := range all {
		if component.EligibleAt(category, now) {
			eligible = append(eligible, component)
		}
	}

	return eligible, nil
}

// FindSimilar runs FindNearest over the section's components, then applies
// eligibility filtering in process. The query over-fetches so that cooldown
// and category filtering still leaves enough candidates.
func (r *catalogRepository) FindSimilar(ctx context.Context, section types.SectionType, category types.CategoryID, embedding []float32, limit int, now time.Time) ([]*model.ComponentMatch, error) {
	fetchLimit := limit * 4
	if fetchLimit < 20 {
		fetchLimit = 20
	}

	vq := r.componentsCollection().
		Where("SectionType", "==", string(section)).
		FindNearest("Embedding", firestore.Vector32(embedding), fetchLimit, firestore.DistanceMeasureCosine, nil)

	iter := vq.Documents(ctx)
	defer iter.Stop()

	matches := make([]*model.ComponentMatch, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate component vector search results", goerr.V("section", section))
		}

		var d componentDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal component from vector search")
		}

		component := fromComponentDoc(&d)
		if !component.EligibleAt(category, now) {
			continue
		}

		matches = append(matches, &model.ComponentMatch{
			Component:  component,
			Similarity: cosineSimilarity(embedding, component.Embedding),
		})

		if len(matches) >= limit {
			break
		}
	}

	return matches, nil
}

func (r *catalogRepository) MarkUsed(ctx context.Context, id types.ComponentID, now time.Time, base, cap time.Duration) (*model.Component, error) {
	docRef := r.componentsCollection().Doc(string(id))

	var updated *model.Component
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "component not found", goerr.V("componentID", id))
			}
			return goerr.Wrap(err, "failed to get component in transaction")
		}

		var d componentDoc
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal component in transaction")
		}

		d.UsageCount++
		usedAt := now
		d.LastUsedAt = &usedAt

		cooldown := base * time.Duration(d.UsageCount)
		if cooldown > cap {
			cooldown = cap
		}
		until := now.Add(cooldown)
		d.CooldownUntil = &until

		if err := tx.Update(docRef, []firestore.Update{
			{Path: "UsageCount", Value: d.UsageCount},
			{Path: "LastUsedAt", Value: d.LastUsedAt},
			{Path: "CooldownUntil", Value: d.CooldownUntil},
		}); err != nil {
			return goerr.Wrap(err, "failed to update component usage")
		}

		updated = fromComponentDoc(&d)
		return nil
	})

	if err != nil {
		return nil, goerr.Wrap(err, "failed to mark component used", goerr.V("componentID", id))
	}

	return updated, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
