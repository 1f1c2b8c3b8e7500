package domain

import "time"

// TimeOfDay is a wall-clock moment within a day (no date, no zone).
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Seconds returns the offset from midnight in seconds.
func (t TimeOfDay) Seconds() int { return t.Hour*3600 + t.Minute*60 }

// Itinerary is a multi-day trip owned by a user.
// StartDate and EndDate are calendar dates (time components ignored);
// StartHour/EndHour bound the daily sightseeing window. The upstream CRUD
// layer guarantees StartDate <= EndDate and StartHour <= EndHour.
type Itinerary struct {
	ID         int64
	Title      string
	StartPoint Coordinates
	StartDate  time.Time
	EndDate    time.Time
	StartHour  TimeOfDay
	EndHour    TimeOfDay
}
