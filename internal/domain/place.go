package domain

import "strings"

// Place is a point of interest that can be visited during an itinerary.
type Place struct {
	ID       int64
	Name     string
	Category string
	Location Coordinates
}

// DefaultVisitMinutes is used when no category keyword matches.
const DefaultVisitMinutes = 60

// Keyword -> typical visit length in minutes. Matched as substrings of the
// place category, first hit wins.
var categoryVisitMinutes = []struct {
	keyword string
	minutes int
}{
	{"museum", 120},
	{"gallery", 90},
	{"park", 90},
	{"zoo", 180},
	{"restaurant", 90},
	{"cafe", 45},
	{"bar", 60},
	{"church", 45},
	{"temple", 45},
	{"monument", 30},
	{"viewpoint", 30},
	{"market", 60},
	{"beach", 120},
}

// EstimateVisitMinutes derives a visit duration from a place category.
// Categories are matched case-insensitively by keyword; unknown categories
// fall back to DefaultVisitMinutes.
func EstimateVisitMinutes(category string) int {
	c := strings.ToLower(category)
	for _, e := range categoryVisitMinutes {
		if strings.Contains(c, e.keyword) {
			return e.minutes
		}
	}
	return DefaultVisitMinutes
}
