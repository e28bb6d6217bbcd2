// Package config loads the delivery channel definitions.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxAttempts = 10
	DefaultMaxSeconds  = 600
)

// ErrInvalidChannel reports a channel entry that cannot be delivered to.
var ErrInvalidChannel = errors.New("invalid channel")

type channelEntry struct {
	Secret      string `yaml:"secret"`
	CallbackURL string `yaml:"callback_url"`
	MaxAttempts *int   `yaml:"max_attempts_expiry"`
	MaxSeconds  *int   `yaml:"max_seconds"`
	RateLimit   int    `yaml:"rate_limit"`
}

type channelsFile struct {
	Channels map[string]channelEntry `yaml:"channels"`
}

// LoadChannels reads a YAML (or JSON) channel file.
func LoadChannels(path string) ([]model.Channel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read channels file: %w", err)
	}
	return ParseChannels(raw)
}

// ParseChannels decodes channel definitions, applies defaults and validates them.
// The result is ordered by channel name.
func ParseChannels(raw []byte) ([]model.Channel, error) {
	var file channelsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode channels: %w", err)
	}
	if len(file.Channels) == 0 {
		return nil, fmt.Errorf("%w: no channels defined", ErrInvalidChannel)
	}

	channels := make([]model.Channel, 0, len(file.Channels))
	for name, entry := range file.Channels {
		ch, err := entry.channel(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i].Name < channels[j].Name })
	return channels, nil
}

func (e channelEntry) channel(name string) (model.Channel, error) {
	if name == "" {
		return model.Channel{}, fmt.Errorf("%w: empty name", ErrInvalidChannel)
	}
	if strings.Contains(name, model.KeySeparator) {
		return model.Channel{}, fmt.Errorf("%w: %s: name must not contain %q", ErrInvalidChannel, name, model.KeySeparator)
	}
	u, err := url.Parse(e.CallbackURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return model.Channel{}, fmt.Errorf("%w: %s: callback_url %q is not an absolute url", ErrInvalidChannel, name, e.CallbackURL)
	}

	attempts := DefaultMaxAttempts
	if e.MaxAttempts != nil {
		attempts = *e.MaxAttempts
	}
	if attempts < 1 {
		return model.Channel{}, fmt.Errorf("%w: %s: max_attempts_expiry must be at least 1", ErrInvalidChannel, name)
	}

	seconds := DefaultMaxSeconds
	if e.MaxSeconds != nil {
		seconds = *e.MaxSeconds
	}
	if seconds < 1 {
		return model.Channel{}, fmt.Errorf("%w: %s: max_seconds must be at least 1", ErrInvalidChannel, name)
	}
	if e.RateLimit < 0 {
		return model.Channel{}, fmt.Errorf("%w: %s: rate_limit must not be negative", ErrInvalidChannel, name)
	}

	return model.Channel{
		Name:        name,
		Secret:      e.Secret,
		CallbackURL: e.CallbackURL,
		MaxAttempts: attempts,
		MaxBackoff:  time.Duration(seconds) * time.Second,
		RateLimit:   e.RateLimit,
	}, nil
}
