package upstream

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

const (
	defaultMaxConcurrentFetches = 16
	maxRawTransactionSize       = 256 << 20
)

// Fetcher retrieves oversized raw transactions; concurrent requests for one url share a single call.
type Fetcher struct {
	client  *http.Client
	group   singleflight.Group
	limiter *semaphore.Weighted
}

// NewFetcher bounds in-flight requests to maxConcurrent; a nil client gets a 60s timeout.
func NewFetcher(client *http.Client, maxConcurrent int) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: time.Minute}
	}
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentFetches
	}
	return &Fetcher{client: client, limiter: semaphore.NewWeighted(int64(maxConcurrent))}
}

// Fetch returns the raw transaction bytes. Hex-encoded bodies are decoded.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("fetch url is required")
	}
	v, err, _ := f.group.Do(url, func() (any, error) {
		if err := f.limiter.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer f.limiter.Release(1)
		return f.get(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	raw, _ := v.([]byte)
	return raw, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch raw transaction: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch raw transaction: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRawTransactionSize))
	if err != nil {
		return nil, fmt.Errorf("read raw transaction: %w", err)
	}
	return decodeRaw(body), nil
}

// decodeRaw accepts both binary and hex transport of the same bytes.
func decodeRaw(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || len(trimmed)%2 != 0 {
		return body
	}
	decoded := make([]byte, hex.DecodedLen(len(trimmed)))
	if _, err := hex.Decode(decoded, trimmed); err != nil {
		return body
	}
	return decoded
}
