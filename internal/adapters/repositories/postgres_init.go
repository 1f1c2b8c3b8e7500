package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/czaja307/TravelPlanner-backend/internal/domain"
)

// Initialize the Postgres schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createItinerariesQuery := `
	CREATE TABLE IF NOT EXISTS itineraries (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		start_lon DOUBLE PRECISION NOT NULL,
		start_lat DOUBLE PRECISION NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		start_hour SMALLINT NOT NULL,
		start_minute SMALLINT NOT NULL DEFAULT 0,
		end_hour SMALLINT NOT NULL,
		end_minute SMALLINT NOT NULL DEFAULT 0,
		CHECK (start_date <= end_date)
	);
	`

	createPlacesQuery := `
	CREATE TABLE IF NOT EXISTS places (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`

	createVisitsQuery := `
	CREATE TABLE IF NOT EXISTS visits (
		id BIGSERIAL PRIMARY KEY,
		itinerary_id BIGINT NOT NULL REFERENCES itineraries(id) ON DELETE CASCADE,
		place_id BIGINT NOT NULL REFERENCES places(id),
		day INTEGER NOT NULL CHECK (day >= 1),
		duration_minutes INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		UNIQUE (itinerary_id, day, place_id)
	);
	`

	createDailyRoutesQuery := `
	CREATE TABLE IF NOT EXISTS daily_routes (
		id BIGSERIAL PRIMARY KEY,
		itinerary_id BIGINT NOT NULL REFERENCES itineraries(id) ON DELETE CASCADE,
		day INTEGER NOT NULL CHECK (day >= 1),
		geometry TEXT NOT NULL,
		UNIQUE (itinerary_id, day)
	);
	`

	createVisitIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_visits_itinerary_day
	ON visits(itinerary_id, day);
	`

	statements := []string{
		createItinerariesQuery,
		createPlacesQuery,
		createVisitsQuery,
		createDailyRoutesQuery,
		createVisitIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type ItinerarySeed struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	StartLon    float64 `json:"start_lon"`
	StartLat    float64 `json:"start_lat"`
	StartDate   string  `json:"start_date"` // YYYY-MM-DD
	EndDate     string  `json:"end_date"`
	StartHour   int     `json:"start_hour"`
	StartMinute int     `json:"start_minute"`
	EndHour     int     `json:"end_hour"`
	EndMinute   int     `json:"end_minute"`
}

type PlaceSeed struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
}

type Seed struct {
	Itineraries []ItinerarySeed `json:"itineraries"`
	Places      []PlaceSeed     `json:"places"`
}

// Populate the database with demo itineraries and places from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed trips: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("seed trips: parse json: %w", err)
	}

	if err := validateSeed(&data); err != nil {
		return fmt.Errorf("seed trips: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed trips: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	itineraryQuery := `
	INSERT INTO itineraries (id, title, start_lon, start_lat, start_date, end_date, start_hour, start_minute, end_hour, end_minute)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE
	SET title = EXCLUDED.title,
		start_lon = EXCLUDED.start_lon,
		start_lat = EXCLUDED.start_lat,
		start_date = EXCLUDED.start_date,
		end_date = EXCLUDED.end_date,
		start_hour = EXCLUDED.start_hour,
		start_minute = EXCLUDED.start_minute,
		end_hour = EXCLUDED.end_hour,
		end_minute = EXCLUDED.end_minute;
	`
	for _, it := range data.Itineraries {
		_, err := tx.Exec(itineraryQuery,
			it.ID, it.Title, it.StartLon, it.StartLat, it.StartDate, it.EndDate,
			it.StartHour, it.StartMinute, it.EndHour, it.EndMinute)
		if err != nil {
			return fmt.Errorf("seed trips: insert itinerary id=%d: %w", it.ID, err)
		}
	}

	placeQuery := `
	INSERT INTO places (id, name, category, lon, lat)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		category = EXCLUDED.category,
		lon = EXCLUDED.lon,
		lat = EXCLUDED.lat;
	`
	for _, p := range data.Places {
		if _, err := tx.Exec(placeQuery, p.ID, p.Name, p.Category, p.Lon, p.Lat); err != nil {
			return fmt.Errorf("seed trips: insert place id=%d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed trips: commit tx: %w", err)
	}

	return nil
}

func validateSeed(data *Seed) error {
	for i, it := range data.Itineraries {
		if it.ID <= 0 {
			return fmt.Errorf("itinerary at index %d: invalid id %d", i, it.ID)
		}
		if strings.TrimSpace(it.Title) == "" {
			return fmt.Errorf("itinerary id=%d: title cannot be empty", it.ID)
		}
		start := domain.Coordinates{Lon: it.StartLon, Lat: it.StartLat}
		if err := start.Validate(); err != nil {
			return fmt.Errorf("itinerary id=%d: start point: %w", it.ID, err)
		}
	}

	for i, p := range data.Places {
		if p.ID <= 0 {
			return fmt.Errorf("place at index %d: invalid id %d", i, p.ID)
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("place id=%d: name cannot be empty", p.ID)
		}
		loc := domain.Coordinates{Lon: p.Lon, Lat: p.Lat}
		if err := loc.Validate(); err != nil {
			return fmt.Errorf("place id=%d: %w", p.ID, err)
		}
	}

	return nil
}
