package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Delete removes a subscription by identity and returns the number of removed documents.
func (r *Repository) Delete(ctx context.Context, id string) (int64, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("delete", err, start)
	}()

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		err = fmt.Errorf("delete subscription %s: %w", id, err)
		return 0, err
	}
	return res.DeletedCount, nil
}
