package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/registry"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Insert stores a subscription, relying on the unique idx index for conflicts.
func (r *Repository) Insert(ctx context.Context, descriptor, channel string) (model.Subscription, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert", err, start)
	}()

	if err = registry.Validate(descriptor, channel); err != nil {
		return model.Subscription{}, err
	}

	doc := document{
		ID:         r.newID(),
		Key:        model.SubscriptionKey(descriptor, channel),
		Descriptor: descriptor,
		Channel:    channel,
		CreatedAt:  r.now().UTC().Truncate(time.Millisecond),
	}
	if _, err = r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			err = fmt.Errorf("%w: %s", registry.ErrDuplicate, doc.Key)
			return model.Subscription{}, err
		}
		err = fmt.Errorf("insert subscription: %w", err)
		return model.Subscription{}, err
	}
	return doc.subscription(), nil
}

// InsertMany inserts every descriptor independently; a conflict does not stop the batch.
func (r *Repository) InsertMany(ctx context.Context, descriptors []string, channel string) []registry.InsertResult {
	results := make([]registry.InsertResult, 0, len(descriptors))
	for _, descriptor := range descriptors {
		sub, err := r.Insert(ctx, descriptor, channel)
		results = append(results, registry.InsertResult{Descriptor: descriptor, Subscription: sub, Err: err})
	}
	return results
}

func (d document) subscription() model.Subscription {
	return model.Subscription{
		ID:         d.ID,
		Descriptor: d.Descriptor,
		Channel:    d.Channel,
		Key:        d.Key,
		CreatedAt:  d.CreatedAt,
	}
}

func newID() string {
	return uuid.NewString()
}
