package sportmonks

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces one global minimum interval between outbound calls,
// 3600/requestsPerHour seconds, shared by every sync stream.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewLimiter(requestsPerHour int) *Limiter {
	var interval time.Duration
	if requestsPerHour > 0 {
		interval = time.Duration(float64(time.Hour) / float64(requestsPerHour))
	}
	return &Limiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Wait blocks until the caller's reserved slot arrives. Slots are
// handed out under the mutex so concurrent streams serialize on one
// global rate rather than one rate each.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.interval <= 0 {
		return ctx.Err()
	}

	l.mu.Lock()
	now := l.now()
	slot := l.next
	if slot.Before(now) {
		slot = now
	}
	l.next = slot.Add(l.interval)
	l.mu.Unlock()

	if wait := slot.Sub(now); wait > 0 {
		return l.sleep(ctx, wait)
	}
	return ctx.Err()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
