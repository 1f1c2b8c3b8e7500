package services

import (
	"fmt"

	"github.com/czaja307/TravelPlanner-backend/internal/domain"
	"github.com/czaja307/TravelPlanner-backend/internal/ports"
)

// stitcher reassembles per-segment optimizer results into a single
// day-ordered schedule and tracks the worst status seen so far.
type stitcher struct {
	itineraryID   int64
	visits        []*domain.Visit
	geometryByDay map[int]string
	status        domain.ScheduleStatus
}

func newStitcher(itineraryID int64) *stitcher {
	return &stitcher{
		itineraryID:   itineraryID,
		geometryByDay: make(map[int]string),
		status:        domain.StatusSatisfied,
	}
}

// add folds one segment's result into the accumulated schedule. Vehicle
// slot IDs are local to the segment; the segment's day offset maps them
// onto absolute 1-based itinerary days.
func (st *stitcher) add(seg Segment, res ports.OptimizationResult) error {
	for _, route := range res.Routes {
		day := route.VehicleID + 1 + seg.DayOffset
		st.geometryByDay[day] = route.Geometry

		for _, step := range route.Steps {
			if step.Type != ports.StepTypeJob {
				continue
			}
			if step.JobID < 0 || step.JobID >= len(seg.Places) {
				return fmt.Errorf("stitch segment: job id %d out of range (%d places)", step.JobID, len(seg.Places))
			}

			req := seg.Places[step.JobID]
			st.visits = append(st.visits, &domain.Visit{
				ItineraryID:     st.itineraryID,
				PlaceID:         req.Place.ID,
				Place:           req.Place,
				Day:             day,
				DurationMinutes: req.DurationMinutes,
				StartTime:       formatClock(step.ArrivalSeconds),
			})
		}
	}

	st.status = st.status.Worst(segmentStatus(seg, res))
	return nil
}

// segmentStatus classifies how completely the optimizer satisfied one
// segment: dropped jobs and idle day-slots each degrade the status, and
// both together degrade it further.
func segmentStatus(seg Segment, res ports.OptimizationResult) domain.ScheduleStatus {
	status := domain.StatusSatisfied
	if len(res.Unassigned) > 0 {
		status = domain.StatusPlacesDropped
	}
	if len(res.Routes) < seg.Days {
		if status == domain.StatusPlacesDropped {
			return domain.StatusDroppedAndUnused
		}
		return domain.StatusDaysUnused
	}
	return status
}

// formatClock renders seconds of day as "HH:MM:SS".
func formatClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}
