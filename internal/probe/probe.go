package probe

import (
	"context"
	"fmt"
	"time"
)

// DefaultMaxAttempts and DefaultInterval match the retry budget a CI job
// needs for a database container that is still starting up.
const (
	DefaultMaxAttempts = 30
	DefaultInterval    = time.Second
)

// TimeoutError is returned when the retry budget is exhausted. It carries
// the last underlying connection error so the caller can report why the
// endpoint never became ready.
type TimeoutError struct {
	Attempts int
	Last     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("database not ready after %d attempts: %v", e.Attempts, e.Last)
}

func (e *TimeoutError) Unwrap() error {
	return e.Last
}

// Prober polls a database endpoint until it accepts connections or the
// attempt budget runs out. The sleep function is injectable so tests can
// simulate elapsed time without real delay.
type Prober struct {
	MaxAttempts int
	Interval    time.Duration

	// Sleep waits for d or until ctx is cancelled. Defaults to a
	// context-aware time.After wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// New creates a prober with the default retry budget
func New() *Prober {
	return &Prober{
		MaxAttempts: DefaultMaxAttempts,
		Interval:    DefaultInterval,
	}
}

// WaitUntilReady attempts ping up to MaxAttempts times, sleeping Interval
// between failures. It returns nil as soon as one attempt succeeds, the
// context error if the caller aborts the run, and a *TimeoutError once the
// budget is exhausted.
func (p *Prober) WaitUntilReady(ctx context.Context, ping func(ctx context.Context) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = defaultSleep
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = ping(ctx)
		if lastErr == nil {
			return nil
		}

		// No sleep after the final attempt; the budget is spent
		if attempt == maxAttempts {
			break
		}
		if err := sleep(ctx, interval); err != nil {
			return err
		}
	}

	return &TimeoutError{Attempts: maxAttempts, Last: lastErr}
}

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
