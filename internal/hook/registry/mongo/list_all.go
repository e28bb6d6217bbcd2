package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ListAll returns every subscription in creation order.
func (r *Repository) ListAll(ctx context.Context) ([]model.Subscription, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("list_all", err, start)
	}()

	var subs []model.Subscription
	subs, err = r.find(ctx, bson.D{})
	if err != nil {
		err = fmt.Errorf("list subscriptions: %w", err)
		return nil, err
	}
	return subs, nil
}

func (r *Repository) find(ctx context.Context, filter bson.D) ([]model.Subscription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "idx", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}

	subs := make([]model.Subscription, 0, len(docs))
	for _, doc := range docs {
		subs = append(subs, doc.subscription())
	}
	return subs, nil
}
