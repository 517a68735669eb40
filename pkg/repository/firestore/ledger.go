package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/vlah-sh/mosaic/pkg/domain/model"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type generationDoc struct {
	ID         string            `firestore:"ID"`
	Category   string            `firestore:"Category"`
	StyleTag   string            `firestore:"StyleTag"`
	Components map[string]string `firestore:"Components"`
	LayoutHash string            `firestore:"LayoutHash"`
	CreatedAt  time.Time         `firestore:"CreatedAt"`
}

func toGenerationDoc(r *model.GenerationRecord) *generationDoc {
	doc := &generationDoc{
		ID:         string(r.ID),
		Category:   string(r.Category),
		StyleTag:   string(r.StyleTag),
		Components: make(map[string]string, len(r.Components)),
		LayoutHash: string(r.LayoutHash),
		CreatedAt:  r.CreatedAt,
	}
	for section, componentID := range r.Components {
		doc.Components[string(section)] = string(componentID)
	}
	return doc
}

func fromGenerationDoc(d *generationDoc) *model.GenerationRecord {
	record := &model.GenerationRecord{
		ID:         types.GenerationID(d.ID),
		Category:   types.CategoryID(d.Category),
		StyleTag:   types.StyleTag(d.StyleTag),
		Components: make(model.Layout, len(d.Components)),
		LayoutHash: types.LayoutHash(d.LayoutHash),
		CreatedAt:  d.CreatedAt,
	}
	for section, componentID := range d.Components {
		record.Components[types.SectionType(section)] = types.ComponentID(componentID)
	}
	return record
}

type usageEventDoc struct {
	ComponentID  string    `firestore:"ComponentID"`
	GenerationID string    `firestore:"GenerationID"`
	SectionType  string    `firestore:"SectionType"`
	Category     string    `firestore:"Category"`
	StyleTag     string    `firestore:"StyleTag"`
	UsedAt       time.Time `firestore:"UsedAt"`
}

type ledgerRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newLedgerRepository(client *firestore.Client) *ledgerRepository {
	return &ledgerRepository{client: client}
}

func (r *ledgerRepository) collection(name string) *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		name = r.collectionPrefix + "_" + name
	}
	return r.client.Collection(name)
}

func (r *ledgerRepository) generationsCollection() *firestore.CollectionRef {
	return r.collection("generations")
}

func (r *ledgerRepository) usageEventsCollection() *firestore.CollectionRef {
	return r.collection("usage_events")
}

func (r *ledgerRepository) PutGeneration(ctx context.Context, record *model.GenerationRecord) error {
	if record.ID == "" {
		return goerr.New("generation ID is required")
	}

	docRef := r.generationsCollection().Doc(string(record.ID))
	if _, err := docRef.Set(ctx, toGenerationDoc(record)); err != nil {
		return goerr.Wrap(err, "failed to put generation record", goerr.V("generationID", record.ID))
	}

	return nil
}

func (r *ledgerRepository) PutUsageEvents(ctx context.Context, events []*model.UsageEvent) error {
	bw := r.client.BulkWriter(ctx)
	for _, event := range events {
		if event.ComponentID == "" || event.GenerationID == "" {
			return goerr.New("usage event requires component and generation IDs")
		}
		doc := &usageEventDoc{
			ComponentID:  string(event.ComponentID),
			GenerationID: string(event.GenerationID),
			SectionType:  string(event.SectionType),
			Category:     string(event.Category),
			StyleTag:     string(event.StyleTag),
			UsedAt:       event.UsedAt,
		}
		if _, err := bw.Create(r.usageEventsCollection().NewDoc(), doc); err != nil {
			return goerr.Wrap(err, "failed to enqueue usage event write")
		}
	}
	bw.End()

	return nil
}

func (r *ledgerRepository) GetByLayoutHash(ctx context.Context, hash types.LayoutHash) (*model.GenerationRecord, error) {
	iter := r.generationsCollection().
		Where("LayoutHash", "==", string(hash)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query generation by layout hash", goerr.V("hash", hash))
	}

	var d generationDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal generation record")
	}

	return fromGenerationDoc(&d), nil
}

func (r *ledgerRepository) CountUsage(ctx context.Context, componentID types.ComponentID, category types.CategoryID, since time.Time) (int64, error) {
	iter := r.usageEventsCollection().
		Where("ComponentID", "==", string(componentID)).
		Where("Category", "==", string(category)).
		Where("UsedAt", ">=", since).
		Documents(ctx)
	defer iter.Stop()

	var count int64
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to count usage events",
				goerr.V("componentID", componentID),
				goerr.V("category", category),
			)
		}
		count++
	}

	return count, nil
}

func (r *ledgerRepository) ListRecentGenerations(ctx context.Context, category types.CategoryID, since time.Time, limit int) ([]*model.GenerationRecord, error) {
	q := r.generationsCollection().
		Where("Category", "==", string(category)).
		Where("CreatedAt", ">=", since).
		OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	records := make([]*model.GenerationRecord, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate generation records", goerr.V("category", category))
		}

		var d generationDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal generation record")
		}

		records = append(records, fromGenerationDoc(&d))
	}

	return records, nil
}

func (r *ledgerRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	pruned, err := r.deleteWhereBefore(ctx, r.generationsCollection(), "CreatedAt", cutoff)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to prune generation records")
	}

	if _, err := r.deleteWhereBefore(ctx, r.usageEventsCollection(), "UsedAt", cutoff); err != nil {
		return pruned, goerr.Wrap(err, "failed to prune usage events")
	}

	return pruned, nil
}

func (r *ledgerRepository) deleteWhereBefore(ctx context.Context, coll *firestore.CollectionRef, field string, cutoff time.Time) (int64, error) {
	iter := coll.Where(field, "<", cutoff).Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	var deleted int64
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return deleted, goerr.Wrap(err, "failed to iterate documents for pruning")
		}

		if _, err := bw.Delete(doc.Ref); err != nil {
			return deleted, goerr.Wrap(err, "failed to enqueue document delete")
		}
		deleted++
	}
	bw.End()

	return deleted, nil
}
