package ports

import (
	"context"
	"errors"

	"github.com/czaja307/TravelPlanner-backend/internal/domain"
)

var (
	ErrItineraryNotFound = errors.New("itinerary not found")
	ErrPlaceNotFound     = errors.New("place not found")
)

// Port: a boundary for retrieving itinerary and place entities.
type TripRepository interface {
	// Fetch one itinerary by ID; ErrItineraryNotFound if absent.
	GetItinerary(ctx context.Context, id int64) (*domain.Itinerary, error)

	// Fetch places by ID, preserving the requested order.
	// ErrPlaceNotFound if any ID is unknown.
	GetPlaces(ctx context.Context, ids []int64) ([]*domain.Place, error)

	// List an itinerary's persisted visits ordered by (day, start_time).
	ListVisits(ctx context.Context, itineraryID int64) ([]*domain.Visit, error)
}
