// Package clock abstracts wall time for retry schedules.
package clock

import (
	"context"
	"time"
)

// Clock reports the current time and waits.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// Real is the system clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) Sleep(ctx context.Context, d time.Duration) error {
	return SleepWithContext(ctx, d)
}

// SleepWithContext waits for d or until ctx ends, whichever comes first.
// A non-positive d only reports the context state.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
