package domain

// PlaceRequest pairs a place with the visit duration requested for one
// optimization run. The duration may come from the caller or from the
// place's category estimate.
type PlaceRequest struct {
	Place           *Place
	DurationMinutes int
}

// Visit is one scheduled stop of an itinerary. A visit is unique per
// (itinerary, day, place); Day is 1-based.
type Visit struct {
	ID              int64
	ItineraryID     int64
	PlaceID         int64
	Place           *Place
	Day             int
	DurationMinutes int
	StartTime       string // "HH:MM:SS" wall-clock time
}

// DailyRoute holds the encoded path geometry of one itinerary day.
// The geometry format is owned by the routing service and passed through
// unchanged. Unique per (itinerary, day).
type DailyRoute struct {
	ID          int64
	ItineraryID int64
	Day         int
	Geometry    string
}

// ScheduleStatus summarizes how completely an optimization run satisfied
// the request. A run that drops places or leaves whole days unused still
// produces a usable schedule, so these are quality signals, not errors.
type ScheduleStatus int

const (
	// Every place assigned, every day-slot used.
	StatusSatisfied ScheduleStatus = 0
	// Some places could not be fit into any day.
	StatusPlacesDropped ScheduleStatus = 1
	// Some day-slots ended up without any visits.
	StatusDaysUnused ScheduleStatus = 2
	// Both places dropped and day-slots unused.
	StatusDroppedAndUnused ScheduleStatus = 3
)

// Worst returns the more severe of two statuses; a single bad segment
// dominates the whole run.
func (s ScheduleStatus) Worst(o ScheduleStatus) ScheduleStatus {
	if o > s {
		return o
	}
	return s
}
