package lock

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLockerSerializesSameID(t *testing.T) {
	l := NewMemoryLocker()

	unlock, err := l.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		u, err := l.Lock(context.Background(), 1)
		if err != nil {
			t.Errorf("second lock: %v", err)
			return
		}
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatalf("second lock acquired while first still held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatalf("second lock never acquired after unlock")
	}
}

func TestMemoryLockerIndependentIDs(t *testing.T) {
	l := NewMemoryLocker()

	unlock1, err := l.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer unlock1()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// A different itinerary must not contend.
	unlock2, err := l.Lock(ctx, 2)
	if err != nil {
		t.Fatalf("lock on other id blocked: %v", err)
	}
	unlock2()
}

func TestMemoryLockerHonorsCancellation(t *testing.T) {
	l := NewMemoryLocker()

	unlock, err := l.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := l.Lock(ctx, 1); err != context.DeadlineExceeded {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}
