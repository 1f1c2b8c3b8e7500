package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/czaja307/TravelPlanner-backend/internal/domain"
	"github.com/czaja307/TravelPlanner-backend/internal/ports"
)

// Postgres-backed implementation of the TripRepository port.
type PostgresTripRepository struct{ DB *sql.DB }

func NewPostgresTripRepository(db *sql.DB) *PostgresTripRepository {
	return &PostgresTripRepository{DB: db}
}

func (r *PostgresTripRepository) GetItinerary(ctx context.Context, id int64) (*domain.Itinerary, error) {
	if r.DB == nil {
		return nil, errors.New("trip repository: DB is nil")
	}

	query := `
	SELECT
		id,
		title,
		start_lon,
		start_lat,
		start_date,
		end_date,
		start_hour,
		start_minute,
		end_hour,
		end_minute
	FROM itineraries
	WHERE id = $1;
	`
	var it domain.Itinerary
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&it.ID,
		&it.Title,
		&it.StartPoint.Lon,
		&it.StartPoint.Lat,
		&it.StartDate,
		&it.EndDate,
		&it.StartHour.Hour,
		&it.StartHour.Minute,
		&it.EndHour.Hour,
		&it.EndHour.Minute,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get itinerary %d: %w", id, ports.ErrItineraryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get itinerary %d: query itineraries table: %w", id, err)
	}

	return &it, nil
}

// GetPlaces fetches the given place IDs and returns them in request order.
// Duplicated IDs in the request yield duplicated entries in the result.
func (r *PostgresTripRepository) GetPlaces(ctx context.Context, ids []int64) ([]*domain.Place, error) {
	if r.DB == nil {
		return nil, errors.New("trip repository: DB is nil")
	}
	if len(ids) == 0 {
		return []*domain.Place{}, nil
	}

	query := `
	SELECT
		id,
		name,
		category,
		lon,
		lat
	FROM places
	WHERE id = ANY($1::bigint[]);
	`
	rows, err := r.DB.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get places: query places table: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*domain.Place, len(ids))
	for rows.Next() {
		var p domain.Place
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Location.Lon, &p.Location.Lat); err != nil {
			return nil, fmt.Errorf("get places: scan row: %w", err)
		}
		byID[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get places: row iteration: %w", err)
	}

	out := make([]*domain.Place, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("get places: id %d: %w", id, ports.ErrPlaceNotFound)
		}
		out = append(out, p)
	}

	return out, nil
}

func (r *PostgresTripRepository) ListVisits(ctx context.Context, itineraryID int64) ([]*domain.Visit, error) {
	if r.DB == nil {
		return nil, errors.New("trip repository: DB is nil")
	}

	query := `
	SELECT
		v.id,
		v.itinerary_id,
		v.place_id,
		v.day,
		v.duration_minutes,
		v.start_time,
		p.name,
		p.category,
		p.lon,
		p.lat
	FROM visits v
	JOIN places p ON p.id = v.place_id
	WHERE v.itinerary_id = $1
	ORDER BY v.day, v.start_time;
	`
	rows, err := r.DB.QueryContext(ctx, query, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("list visits: query visits table: %w", err)
	}
	defer rows.Close()

	visits := make([]*domain.Visit, 0, 32)
	for rows.Next() {
		var v domain.Visit
		var p domain.Place
		err := rows.Scan(
			&v.ID,
			&v.ItineraryID,
			&v.PlaceID,
			&v.Day,
			&v.DurationMinutes,
			&v.StartTime,
			&p.Name,
			&p.Category,
			&p.Location.Lon,
			&p.Location.Lat,
		)
		if err != nil {
			return nil, fmt.Errorf("list visits: scan row: %w", err)
		}
		p.ID = v.PlaceID
		v.Place = &p
		visits = append(visits, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list visits: row iteration: %w", err)
	}

	return visits, nil
}
