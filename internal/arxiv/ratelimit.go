// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum gap between consecutive requests, measured
// from the end of the previous call. It is shared by the metadata client
// and the PDF fetcher so the process as a whole honors the arXiv delay
// policy. The clock and sleep functions are injectable for tests.
type Limiter struct {
	mu    sync.Mutex
	delay time.Duration
	last  time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLimiter creates a limiter with the given inter-call delay.
func NewLimiter(delay time.Duration) *Limiter {
	return &Limiter{
		delay: delay,
		now:   time.Now,
		sleep: sleepContext,
	}
}

// Wait blocks until the configured delay has elapsed since the end of the
// previous call (recorded via Mark). The first call never waits. Returns
// the context error if cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	var remaining time.Duration
	if !l.last.IsZero() {
		elapsed := l.now().Sub(l.last)
		if elapsed < l.delay {
			remaining = l.delay - elapsed
		}
	}
	l.mu.Unlock()

	if remaining <= 0 {
		return nil
	}
	return l.sleep(ctx, remaining)
}

// Mark records the end of a call. Callers invoke it after the request
// completes so the delay measures the true inter-call gap.
func (l *Limiter) Mark() {
	l.mu.Lock()
	l.last = l.now()
	l.mu.Unlock()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
