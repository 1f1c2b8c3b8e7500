package lock

import (
	"context"
	"sync"
)

// MemoryLocker serializes optimization runs per itinerary within a single
// process. Each itinerary gets a one-slot channel semaphore so waiters can
// honor context cancellation, which a plain sync.Mutex cannot.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[int64]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[int64]chan struct{})}
}

func (l *MemoryLocker) slot(itineraryID int64) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[itineraryID]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[itineraryID] = s
	}
	return s
}

func (l *MemoryLocker) Lock(ctx context.Context, itineraryID int64) (func(), error) {
	s := l.slot(itineraryID)

	select {
	case s <- struct{}{}:
		return func() { <-s }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
