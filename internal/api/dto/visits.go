package dto

type ItineraryVisitResponse struct {
	VisitID         int64   `json:"visit_id"`
	PlaceID         int64   `json:"place_id"`
	PlaceName       string  `json:"place_name"`
	Day             int     `json:"day"`
	StartTime       string  `json:"start_time"`
	DurationMinutes int     `json:"duration"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
}

type ItineraryVisitsResponse struct {
	Itinerary int64                    `json:"itinerary"`
	Visits    []ItineraryVisitResponse `json:"visits"`
}
