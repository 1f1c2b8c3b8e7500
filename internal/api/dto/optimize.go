package dto

type OptimizePlaceRequest struct {
	PlaceID int64 `json:"place_id"`
	// DurationHours overrides the category-based estimate when present.
	DurationHours *float64 `json:"duration_hours"`
}

type OptimizeRequest struct {
	ItineraryID int64                  `json:"itinerary_id"`
	Places      []OptimizePlaceRequest `json:"places"`
}

type VisitResponse struct {
	PlaceName       string  `json:"place_name"`
	StartTime       string  `json:"start_time"` // "HH:MM:SS"
	DurationMinutes int     `json:"duration"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
}

type DayResponse struct {
	Day      int             `json:"day"`
	Visits   []VisitResponse `json:"visits"`
	Geometry *string         `json:"geometry"`
}

type OptimizeResponse struct {
	Itinerary int64         `json:"itinerary"`
	Days      []DayResponse `json:"days"`
	Status    int           `json:"status"`
}
