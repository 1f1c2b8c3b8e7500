package services

import "github.com/czaja307/TravelPlanner-backend/internal/domain"

// ScheduleDay is one presented day of an optimized itinerary. Days with no
// visits are still reported, with an empty visit list and no geometry.
type ScheduleDay struct {
	Day      int
	Visits   []*domain.Visit
	Geometry string // empty when the day has no route
}

// ItinerarySchedule is the full result of one optimization run.
type ItinerarySchedule struct {
	ItineraryID int64
	Days        []ScheduleDay
	Status      domain.ScheduleStatus
}

// assembleDays groups visits by day across the whole [1, daysCount] range
// and attaches each day's geometry.
func assembleDays(itineraryID int64, daysCount int, visits []*domain.Visit, geometryByDay map[int]string, status domain.ScheduleStatus) *ItinerarySchedule {
	byDay := make(map[int][]*domain.Visit, daysCount)
	for _, v := range visits {
		byDay[v.Day] = append(byDay[v.Day], v)
	}

	days := make([]ScheduleDay, 0, daysCount)
	for day := 1; day <= daysCount; day++ {
		dayVisits := byDay[day]
		if dayVisits == nil {
			dayVisits = []*domain.Visit{}
		}
		days = append(days, ScheduleDay{
			Day:      day,
			Visits:   dayVisits,
			Geometry: geometryByDay[day],
		})
	}

	return &ItinerarySchedule{
		ItineraryID: itineraryID,
		Days:        days,
		Status:      status,
	}
}
