package ports

import "context"

// Port: mutual exclusion between optimization runs of the same itinerary.
// Runs for different itineraries are independent and never contend.
type ItineraryLocker interface {
	// Lock blocks until the itinerary's lock is held or ctx is done.
	// The returned function releases the lock.
	Lock(ctx context.Context, itineraryID int64) (unlock func(), err error)
}
