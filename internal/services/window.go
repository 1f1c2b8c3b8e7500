package services

import (
	"time"

	"github.com/czaja307/TravelPlanner-backend/internal/domain"
)

// DayWindow is the daily sightseeing window in seconds of day.
type DayWindow struct {
	StartSeconds int
	EndSeconds   int
}

// ResolveWindow derives the itinerary's day count and daily working window.
// The day count is inclusive of both endpoints: a trip starting and ending
// on the same date is one day. Precondition (enforced upstream): start date
// and start hour do not exceed their end counterparts.
func ResolveWindow(it *domain.Itinerary) (daysCount int, window DayWindow) {
	start := dateOnly(it.StartDate)
	end := dateOnly(it.EndDate)
	daysCount = int(end.Sub(start)/(24*time.Hour)) + 1

	window = DayWindow{
		StartSeconds: it.StartHour.Seconds(),
		EndSeconds:   it.EndHour.Seconds(),
	}
	return daysCount, window
}

// dateOnly drops the time-of-day component, keeping the calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
