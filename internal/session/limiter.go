package session

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyLoads is returned when every load slot stays occupied for longer
// than the limiter's wait time.
var ErrTooManyLoads = errors.New("too many loads in progress, please try again later")

const (
	DefaultMaxConcurrentLoads = 4
	DefaultMaxWait            = 30 * time.Second
)

// LoadLimiter bounds the number of CSV or database loads parsed at once.
// Parsing holds a whole table in memory, so the bound caps peak usage.
type LoadLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewLoadLimiter returns a limiter with maxConcurrent slots. Non-positive
// arguments fall back to the package defaults.
func NewLoadLimiter(maxConcurrent int, maxWait time.Duration) *LoadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentLoads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	return &LoadLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire blocks until a slot is free. It returns ErrTooManyLoads after the
// wait time, or ctx.Err() if the caller's context ends first. Every
// successful Acquire must be paired with Release.
func (l *LoadLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyLoads
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *LoadLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

func (l *LoadLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

func (l *LoadLimiter) Active() int { return int(l.active.Load()) }

func (l *LoadLimiter) Capacity() int { return cap(l.slots) }

// Drain blocks until no load is in flight or ctx ends. Used on shutdown.
func (l *LoadLimiter) Drain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// LimiterStatus is the JSON shape reported on the health endpoint.
type LimiterStatus struct {
	Active    int `json:"active"`
	Available int `json:"available"`
	Capacity  int `json:"capacity"`
}

func (l *LoadLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:    l.Active(),
		Available: cap(l.slots) - len(l.slots),
		Capacity:  cap(l.slots),
	}
}
