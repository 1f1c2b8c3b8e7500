package ports

import (
	"context"

	"github.com/czaja307/TravelPlanner-backend/internal/domain"
)

// Port: atomic replacement of an itinerary's persisted schedule.
type ScheduleStore interface {
	// ReplaceSchedule deletes all prior visits and daily routes of the
	// itinerary and inserts the given ones, all in one transaction.
	// On any failure the prior schedule remains exactly as it was.
	ReplaceSchedule(ctx context.Context, itineraryID int64, visits []*domain.Visit, routes []*domain.DailyRoute) error
}
