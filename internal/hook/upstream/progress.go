package upstream

import (
	"context"
	"errors"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"
)

const progressKey = "bithook:progress"

// RedisProgress stores the next block height to stream per filter topic.
type RedisProgress struct {
	client goredis.UniversalClient
}

func NewRedisProgress(client goredis.UniversalClient) *RedisProgress {
	return &RedisProgress{client: client}
}

func (p *RedisProgress) Load(ctx context.Context, topic string) (uint64, bool, error) {
	height, err := p.client.HGet(ctx, progressKey, topic).Uint64()
	if errors.Is(err, goredis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load progress for %s: %w", topic, err)
	}
	return height, true, nil
}

func (p *RedisProgress) Save(ctx context.Context, topic string, height uint64) error {
	if err := p.client.HSet(ctx, progressKey, topic, height).Err(); err != nil {
		return fmt.Errorf("save progress for %s: %w", topic, err)
	}
	return nil
}

// MemoryProgress is a process-local ProgressStore.
type MemoryProgress struct {
	mu      sync.Mutex
	heights map[string]uint64
}

func NewMemoryProgress() *MemoryProgress {
	return &MemoryProgress{heights: make(map[string]uint64)}
}

func (p *MemoryProgress) Load(_ context.Context, topic string) (uint64, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	height, ok := p.heights[topic]
	return height, ok, nil
}

func (p *MemoryProgress) Save(_ context.Context, topic string, height uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.heights[topic] = height
	return nil
}
