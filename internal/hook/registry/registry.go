// Package registry holds the storage-agnostic pieces of the subscription registry.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
)

var (
	// ErrDuplicate reports that the (descriptor, channel) pair is already registered.
	ErrDuplicate = errors.New("subscription already exists")
	// ErrInvalid reports an empty descriptor or channel, or a channel containing the key separator.
	ErrInvalid = errors.New("descriptor and channel are required")
)

// InsertResult is the per-item outcome of a batch insert.
type InsertResult struct {
	Descriptor   string
	Subscription model.Subscription
	Err          error
}

// Validate checks a (descriptor, channel) pair before it reaches storage.
func Validate(descriptor, channel string) error {
	if strings.TrimSpace(descriptor) == "" || strings.TrimSpace(channel) == "" {
		return fmt.Errorf("%w: descriptor=%q channel=%q", ErrInvalid, descriptor, channel)
	}
	if strings.Contains(channel, model.KeySeparator) {
		return fmt.Errorf("%w: channel %q contains %q", ErrInvalid, channel, model.KeySeparator)
	}
	return nil
}

// Distinct projects subscriptions onto their unique descriptors, preserving first-seen order.
func Distinct(subs []model.Subscription) []string {
	seen := make(map[string]struct{}, len(subs))
	result := make([]string, 0, len(subs))
	for _, sub := range subs {
		if _, ok := seen[sub.Descriptor]; ok {
			continue
		}
		seen[sub.Descriptor] = struct{}{}
		result = append(result, sub.Descriptor)
	}
	return result
}

// Scheme returns the lower-cased scheme of a registry connection string.
func Scheme(dsn string) string {
	idx := strings.Index(dsn, "://")
	if idx <= 0 {
		return ""
	}
	return strings.ToLower(dsn[:idx])
}
