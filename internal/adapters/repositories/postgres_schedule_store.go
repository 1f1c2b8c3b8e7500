package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/czaja307/TravelPlanner-backend/internal/domain"
)

// Postgres-backed implementation of the ScheduleStore port.
//
// The delete+insert runs in a single transaction: readers either see the
// complete prior schedule or the complete new one, never a mix.
type PostgresScheduleStore struct{ DB *sql.DB }

func NewPostgresScheduleStore(db *sql.DB) *PostgresScheduleStore {
	return &PostgresScheduleStore{DB: db}
}

func (s *PostgresScheduleStore) ReplaceSchedule(
	ctx context.Context,
	itineraryID int64,
	visits []*domain.Visit,
	routes []*domain.DailyRoute,
) error {
	if s.DB == nil {
		return errors.New("schedule store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace schedule: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM visits WHERE itinerary_id = $1;`, itineraryID); err != nil {
		return fmt.Errorf("replace schedule: delete visits: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_routes WHERE itinerary_id = $1;`, itineraryID); err != nil {
		return fmt.Errorf("replace schedule: delete daily routes: %w", err)
	}

	visitStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO visits (itinerary_id, place_id, day, duration_minutes, start_time)
	VALUES ($1, $2, $3, $4, $5);
	`)
	if err != nil {
		return fmt.Errorf("replace schedule: prepare visit insert: %w", err)
	}
	defer visitStmt.Close()

	for _, v := range visits {
		if _, err := visitStmt.ExecContext(ctx, itineraryID, v.PlaceID, v.Day, v.DurationMinutes, v.StartTime); err != nil {
			return fmt.Errorf("replace schedule: insert visit place_id=%d day=%d: %w", v.PlaceID, v.Day, err)
		}
	}

	routeStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO daily_routes (itinerary_id, day, geometry)
	VALUES ($1, $2, $3);
	`)
	if err != nil {
		return fmt.Errorf("replace schedule: prepare route insert: %w", err)
	}
	defer routeStmt.Close()

	for _, r := range routes {
		if _, err := routeStmt.ExecContext(ctx, itineraryID, r.Day, r.Geometry); err != nil {
			return fmt.Errorf("replace schedule: insert daily route day=%d: %w", r.Day, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace schedule: commit tx: %w", err)
	}

	return nil
}
