// Package memory keeps the subscription registry in process memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/registry"
	"github.com/google/uuid"
)

// Registry is a mutex-guarded registry for tests and single-node development.
type Registry struct {
	mu           sync.RWMutex
	byID         map[string]model.Subscription
	byKey        map[string]string
	byDescriptor map[string]map[string]struct{}
	now          func() time.Time
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		byID:         make(map[string]model.Subscription),
		byKey:        make(map[string]string),
		byDescriptor: make(map[string]map[string]struct{}),
		now:          time.Now,
	}
}

// Insert stores a subscription unless the pair already exists.
func (r *Registry) Insert(ctx context.Context, descriptor, channel string) (model.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return model.Subscription{}, err
	}
	if err := registry.Validate(descriptor, channel); err != nil {
		return model.Subscription{}, err
	}

	key := model.SubscriptionKey(descriptor, channel)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKey[key]; ok {
		return model.Subscription{}, registry.ErrDuplicate
	}
	sub := model.Subscription{
		ID:         uuid.NewString(),
		Descriptor: descriptor,
		Channel:    channel,
		Key:        key,
		CreatedAt:  r.now().UTC(),
	}
	r.byID[sub.ID] = sub
	r.byKey[key] = sub.ID
	ids, ok := r.byDescriptor[descriptor]
	if !ok {
		ids = make(map[string]struct{})
		r.byDescriptor[descriptor] = ids
	}
	ids[sub.ID] = struct{}{}
	return sub, nil
}

// InsertMany inserts every descriptor independently.
func (r *Registry) InsertMany(ctx context.Context, descriptors []string, channel string) []registry.InsertResult {
	results := make([]registry.InsertResult, 0, len(descriptors))
	for _, descriptor := range descriptors {
		sub, err := r.Insert(ctx, descriptor, channel)
		results = append(results, registry.InsertResult{Descriptor: descriptor, Subscription: sub, Err: err})
	}
	return results
}

// Delete removes a subscription by identity and reports how many were removed.
func (r *Registry) Delete(ctx context.Context, id string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.byID[id]
	if !ok {
		return 0, nil
	}
	delete(r.byID, id)
	delete(r.byKey, sub.Key)
	if ids, ok := r.byDescriptor[sub.Descriptor]; ok {
		delete(ids, id)
		if len(ids) == 0 {
			delete(r.byDescriptor, sub.Descriptor)
		}
	}
	return 1, nil
}

// ListAll returns every subscription ordered by creation time.
func (r *Registry) ListAll(ctx context.Context) ([]model.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	result := make([]model.Subscription, 0, len(r.byID))
	for _, sub := range r.byID {
		result = append(result, sub)
	}
	r.mu.RUnlock()

	sortSubscriptions(result)
	return result, nil
}

// FindByDescriptor returns every subscription watching descriptor.
func (r *Registry) FindByDescriptor(ctx context.Context, descriptor string) ([]model.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	ids := r.byDescriptor[descriptor]
	result := make([]model.Subscription, 0, len(ids))
	for id := range ids {
		result = append(result, r.byID[id])
	}
	r.mu.RUnlock()

	sortSubscriptions(result)
	return result, nil
}

func sortSubscriptions(subs []model.Subscription) {
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].Key < subs[j].Key
		}
		return subs[i].CreatedAt.Before(subs[j].CreatedAt)
	})
}
