package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/czaja307/TravelPlanner-backend/internal/api/dto"
	"github.com/czaja307/TravelPlanner-backend/internal/metrics"
	"github.com/czaja307/TravelPlanner-backend/internal/platform/obs"
	"github.com/czaja307/TravelPlanner-backend/internal/ports"
	"github.com/czaja307/TravelPlanner-backend/internal/services"
)

// RoutePlanner is the handler's view of the scheduling pipeline.
type RoutePlanner interface {
	OptimizeItinerary(ctx context.Context, req services.OptimizeRequest) (*services.ItinerarySchedule, error)
}

type OptimizeHandler struct {
	Planner RoutePlanner
}

// Optimize runs one visit-scheduling pass for an itinerary and returns the
// day-grouped schedule. Errors map to distinct client codes: 400 for a
// malformed request, 404 for unknown itinerary/place IDs, 502 when the
// routing service fails, 500 otherwise. None of these leaves the persisted
// schedule partially modified.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if req.ItineraryID <= 0 {
		writeError(w, r, http.StatusBadRequest, "itinerary_id is required")
		return
	}
	if len(req.Places) == 0 {
		writeError(w, r, http.StatusBadRequest, "places must be non-empty")
		return
	}
	seen := make(map[int64]struct{}, len(req.Places))
	for _, p := range req.Places {
		if p.PlaceID <= 0 {
			writeError(w, r, http.StatusBadRequest, "place_id is required for every place")
			return
		}
		// A place can be visited once per run; a duplicate would collide
		// with the schedule's (itinerary, day, place) uniqueness.
		if _, dup := seen[p.PlaceID]; dup {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("duplicate place_id %d", p.PlaceID))
			return
		}
		seen[p.PlaceID] = struct{}{}
		if p.DurationHours != nil && *p.DurationHours <= 0 {
			writeError(w, r, http.StatusBadRequest, "duration_hours must be positive")
			return
		}
	}

	svcReq := services.OptimizeRequest{
		ItineraryID: req.ItineraryID,
		Places:      make([]services.PlaceSelection, 0, len(req.Places)),
	}
	for _, p := range req.Places {
		svcReq.Places = append(svcReq.Places, services.PlaceSelection{
			PlaceID:       p.PlaceID,
			DurationHours: p.DurationHours,
		})
	}

	schedule, err := h.Planner.OptimizeItinerary(r.Context(), svcReq)
	if err != nil {
		metrics.OptimizeRuns.WithLabelValues("error").Inc()
		switch {
		case errors.Is(err, ports.ErrItineraryNotFound), errors.Is(err, ports.ErrPlaceNotFound):
			writeError(w, r, http.StatusNotFound, err.Error())
		case errors.Is(err, ports.ErrOptimizerUnavailable):
			log.Printf("optimize failed: req_id=%s err=%v", obs.RequestID(r.Context()), err)
			writeError(w, r, http.StatusBadGateway, "routing service unavailable")
		default:
			log.Printf("optimize failed: req_id=%s err=%v", obs.RequestID(r.Context()), err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	metrics.OptimizeRuns.WithLabelValues(strconv.Itoa(int(schedule.Status))).Inc()

	writeJSON(w, r, http.StatusOK, toOptimizeResponse(schedule))
}

func toOptimizeResponse(schedule *services.ItinerarySchedule) dto.OptimizeResponse {
	res := dto.OptimizeResponse{
		Itinerary: schedule.ItineraryID,
		Days:      make([]dto.DayResponse, 0, len(schedule.Days)),
		Status:    int(schedule.Status),
	}

	for _, d := range schedule.Days {
		visits := make([]dto.VisitResponse, 0, len(d.Visits))
		for _, v := range d.Visits {
			visits = append(visits, dto.VisitResponse{
				PlaceName:       v.Place.Name,
				StartTime:       v.StartTime,
				DurationMinutes: v.DurationMinutes,
				Latitude:        v.Place.Location.Lat,
				Longitude:       v.Place.Location.Lon,
			})
		}

		var geometry *string
		if d.Geometry != "" {
			g := d.Geometry
			geometry = &g
		}

		res.Days = append(res.Days, dto.DayResponse{
			Day:      d.Day,
			Visits:   visits,
			Geometry: geometry,
		})
	}

	return res
}
