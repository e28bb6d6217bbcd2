// Package upstream talks to the transaction event service: filter publishing,
// the mempool and block subscription, and retrieval of oversized transactions.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrPublishRejected is returned when the service answers without a filter id.
var ErrPublishRejected = errors.New("output filter rejected")

type publishRequest struct {
	Outputs []string `json:"outputs"`
}

type publishResponse struct {
	Success bool `json:"success"`
	Result  struct {
		ID string `json:"id"`
	} `json:"result"`
	Error string `json:"error,omitempty"`
}

// FilterPublisher registers descriptor sets with the event service and returns their filter id.
type FilterPublisher struct {
	url     string
	client  *http.Client
	metrics Metrics
}

// NewFilterPublisher posts filters to url; a nil client gets a 30s timeout.
func NewFilterPublisher(url string, client *http.Client, metrics Metrics) (*FilterPublisher, error) {
	if url == "" {
		return nil, errors.New("filter url is required")
	}
	if metrics == nil {
		return nil, errors.New("publisher metrics is required")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &FilterPublisher{url: url, client: client, metrics: metrics}, nil
}

// PublishFilter saves the descriptor set upstream and returns its handle.
func (p *FilterPublisher) PublishFilter(ctx context.Context, descriptors []string) (string, error) {
	started := time.Now()
	handle, err := p.publish(ctx, descriptors)
	p.metrics.ObservePublish(err, started)
	return handle, err
}

func (p *FilterPublisher) publish(ctx context.Context, descriptors []string) (string, error) {
	body, err := json.Marshal(publishRequest{Outputs: descriptors})
	if err != nil {
		return "", fmt.Errorf("encode output filter: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build output filter request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post output filter: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read output filter response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("post output filter: status %d: %s", resp.StatusCode, bytes.TrimSpace(payload))
	}

	var out publishResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("decode output filter response: %w", err)
	}
	if !out.Success || out.Result.ID == "" {
		return "", fmt.Errorf("%w: %s", ErrPublishRejected, out.Error)
	}
	return out.Result.ID, nil
}
