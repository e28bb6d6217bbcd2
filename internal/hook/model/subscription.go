package model

import "time"

// Subscription binds one output descriptor to one delivery channel.
type Subscription struct {
	ID         string    `json:"_id"`
	Descriptor string    `json:"output"`
	Channel    string    `json:"channel"`
	Key        string    `json:"idx"`
	CreatedAt  time.Time `json:"created_at"`
}

// KeySeparator joins descriptor and channel in a SubscriptionKey; channel names must not contain it.
const KeySeparator = "_"

// SubscriptionKey returns the registry-wide unique key of a (descriptor, channel) pair.
func SubscriptionKey(descriptor, channel string) string {
	return descriptor + KeySeparator + channel
}

// Channel is a named delivery destination loaded from configuration.
type Channel struct {
	Name        string
	Secret      string
	CallbackURL string
	MaxAttempts int
	MaxBackoff  time.Duration
	RateLimit   int
}

// ActiveFilter is the descriptor set most recently published to the event source.
type ActiveFilter struct {
	Handle      string    `json:"handle"`
	Descriptors []string  `json:"-"`
	Count       int       `json:"count"`
	Digest      string    `json:"digest"`
	PublishedAt time.Time `json:"published_at"`
}
