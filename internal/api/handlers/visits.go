package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/czaja307/TravelPlanner-backend/internal/api/dto"
	"github.com/czaja307/TravelPlanner-backend/internal/platform/obs"
	"github.com/czaja307/TravelPlanner-backend/internal/ports"
)

// VisitsHandler exposes the persisted schedule of an itinerary.
type VisitsHandler struct {
	Repo ports.TripRepository
}

// ByItinerary handles GET /itineraries/{id}/visits, returning the stored
// visits ordered by day and start time.
func (h *VisitsHandler) ByItinerary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, ok := parseItineraryPath(r.URL.Path)
	if !ok {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	// Resolve the itinerary first so an unknown ID is a 404, not an
	// empty list.
	if _, err := h.Repo.GetItinerary(r.Context(), id); err != nil {
		if errors.Is(err, ports.ErrItineraryNotFound) {
			writeError(w, r, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("get itinerary failed: req_id=%s err=%v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	visits, err := h.Repo.ListVisits(r.Context(), id)
	if err != nil {
		log.Printf("list visits failed: req_id=%s err=%v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ItineraryVisitsResponse{
		Itinerary: id,
		Visits:    make([]dto.ItineraryVisitResponse, 0, len(visits)),
	}
	for _, v := range visits {
		res.Visits = append(res.Visits, dto.ItineraryVisitResponse{
			VisitID:         v.ID,
			PlaceID:         v.PlaceID,
			PlaceName:       v.Place.Name,
			Day:             v.Day,
			StartTime:       v.StartTime,
			DurationMinutes: v.DurationMinutes,
			Latitude:        v.Place.Location.Lat,
			Longitude:       v.Place.Location.Lon,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// parseItineraryPath extracts the ID from "/itineraries/{id}/visits".
func parseItineraryPath(path string) (int64, bool) {
	rest, ok := strings.CutPrefix(path, "/itineraries/")
	if !ok {
		return 0, false
	}
	idPart, ok := strings.CutSuffix(rest, "/visits")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
