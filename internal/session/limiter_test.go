package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLoadLimiter_AcquireRelease(t *testing.T) {
	l := NewLoadLimiter(2, time.Second)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("Acquire #%d: %v", i+1, err)
		}
	}
	if got := l.Status(); got != (LimiterStatus{Active: 2, Available: 0, Capacity: 2}) {
		t.Errorf("Status() = %+v", got)
	}

	l.Release()
	l.Release()
	if got := l.Active(); got != 0 {
		t.Errorf("Active() = %d, want 0", got)
	}
}

func TestLoadLimiter_Defaults(t *testing.T) {
	l := NewLoadLimiter(0, 0)
	if l.Capacity() != DefaultMaxConcurrentLoads {
		t.Errorf("Capacity() = %d, want %d", l.Capacity(), DefaultMaxConcurrentLoads)
	}
}

func TestLoadLimiter_TimesOutWhenFull(t *testing.T) {
	l := NewLoadLimiter(1, 50*time.Millisecond)
	if !l.TryAcquire() {
		t.Fatal("TryAcquire() = false on empty limiter")
	}
	defer l.Release()

	if l.TryAcquire() {
		t.Error("TryAcquire() = true on full limiter")
	}
	if err := l.Acquire(context.Background()); !errors.Is(err, ErrTooManyLoads) {
		t.Errorf("Acquire() error = %v, want ErrTooManyLoads", err)
	}
}

func TestLoadLimiter_ContextCancellation(t *testing.T) {
	l := NewLoadLimiter(1, 5*time.Second)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Acquire(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Acquire() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after cancellation")
	}
}

func TestLoadLimiter_ConcurrentAccess(t *testing.T) {
	const capacity = 3
	l := NewLoadLimiter(capacity, time.Second)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		maxSeen int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			defer l.Release()

			mu.Lock()
			if n := l.Active(); n > maxSeen {
				maxSeen = n
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	if maxSeen > capacity {
		t.Errorf("observed %d active loads, capacity %d", maxSeen, capacity)
	}
	if l.Active() != 0 {
		t.Errorf("Active() = %d after all released", l.Active())
	}
}

func TestLoadLimiter_Drain(t *testing.T) {
	l := NewLoadLimiter(1, time.Second)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Drain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Drain() with active load = %v, want DeadlineExceeded", err)
	}

	l.Release()
	if err := l.Drain(context.Background()); err != nil {
		t.Errorf("Drain() after release = %v", err)
	}
}
