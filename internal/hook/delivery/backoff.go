package delivery

import (
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultInitialInterval = time.Second
	defaultMultiplier      = 2
	defaultJitter          = 0.5
)

// cappedBackOff grows exponentially, adds jitter, never exceeds max and never shrinks.
type cappedBackOff struct {
	exp    *backoff.ExponentialBackOff
	max    time.Duration
	jitter float64
	rand   func() float64
	prev   time.Duration
}

func newCappedBackOff(initial, max time.Duration, jitter float64, rnd func() float64) *cappedBackOff {
	if initial <= 0 {
		initial = defaultInitialInterval
	}
	if max <= 0 {
		max = initial
	}
	if initial > max {
		initial = max
	}
	if rnd == nil {
		rnd = rand.Float64
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = initial
	exp.Multiplier = defaultMultiplier
	exp.RandomizationFactor = 0
	exp.MaxInterval = max
	exp.MaxElapsedTime = 0
	exp.Reset()

	return &cappedBackOff{exp: exp, max: max, jitter: jitter, rand: rnd}
}

// NextBackOff implements backoff.BackOff.
func (b *cappedBackOff) NextBackOff() time.Duration {
	base := b.exp.NextBackOff()
	if base == backoff.Stop {
		base = b.max
	}
	d := base + time.Duration(b.rand()*b.jitter*float64(base))
	if d > b.max {
		d = b.max
	}
	if d < b.prev {
		d = b.prev
	}
	b.prev = d
	return d
}

// Reset implements backoff.BackOff.
func (b *cappedBackOff) Reset() {
	b.exp.Reset()
	b.prev = 0
}
