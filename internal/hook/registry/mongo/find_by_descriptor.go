package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// FindByDescriptor returns the subscriptions of every channel watching descriptor.
func (r *Repository) FindByDescriptor(ctx context.Context, descriptor string) ([]model.Subscription, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("find_by_descriptor", err, start)
	}()

	var subs []model.Subscription
	subs, err = r.find(ctx, bson.D{{Key: "f", Value: descriptor}})
	if err != nil {
		err = fmt.Errorf("find subscriptions for %s: %w", descriptor, err)
		return nil, err
	}
	return subs, nil
}
