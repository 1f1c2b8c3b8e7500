package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/czaja307/TravelPlanner-backend/internal/domain"
	"github.com/czaja307/TravelPlanner-backend/internal/platform/obs"
	"github.com/czaja307/TravelPlanner-backend/internal/ports"
)

// PlannerConfig bounds the optimizer interaction.
type PlannerConfig struct {
	// MaxSlotsPerBatch is the optimizer's vehicle cap per call.
	MaxSlotsPerBatch int
	// OracleTimeout bounds each optimizer call.
	OracleTimeout time.Duration
}

// Planner runs the multi-day visit scheduling pipeline: resolve the
// itinerary window, segment the request, call the optimizer per segment,
// stitch the results, atomically replace the persisted schedule, and
// assemble the day-grouped response.
type Planner struct {
	repo      ports.TripRepository
	optimizer ports.Optimizer
	store     ports.ScheduleStore
	locks     ports.ItineraryLocker
	cfg       PlannerConfig
}

func NewPlanner(
	repo ports.TripRepository,
	optimizer ports.Optimizer,
	store ports.ScheduleStore,
	locks ports.ItineraryLocker,
	cfg PlannerConfig,
) *Planner {
	return &Planner{
		repo:      repo,
		optimizer: optimizer,
		store:     store,
		locks:     locks,
		cfg:       cfg,
	}
}

// PlaceSelection is one requested place. DurationHours overrides the
// category estimate when set.
type PlaceSelection struct {
	PlaceID       int64
	DurationHours *float64
}

type OptimizeRequest struct {
	ItineraryID int64
	Places      []PlaceSelection
}

// OptimizeItinerary executes one optimization run end to end.
//
// Failure semantics: unknown itinerary or place IDs abort before any
// optimizer call; an optimizer failure for any segment aborts the whole
// run with ErrOptimizerUnavailable and nothing is written; a store
// failure leaves the prior schedule intact. Partial assignment (dropped
// places, idle days) is not a failure and is reported via the status.
func (p *Planner) OptimizeItinerary(ctx context.Context, req OptimizeRequest) (_ *ItinerarySchedule, err error) {
	defer obs.Time(ctx, "planner.OptimizeItinerary")(&err)

	it, err := p.repo.GetItinerary(ctx, req.ItineraryID)
	if err != nil {
		return nil, fmt.Errorf("optimize itinerary %d: %w", req.ItineraryID, err)
	}

	ids := make([]int64, len(req.Places))
	for i, sel := range req.Places {
		ids[i] = sel.PlaceID
	}
	places, err := p.repo.GetPlaces(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("optimize itinerary %d: %w", req.ItineraryID, err)
	}

	requests := make([]domain.PlaceRequest, len(places))
	for i, pl := range places {
		minutes := domain.EstimateVisitMinutes(pl.Category)
		if h := req.Places[i].DurationHours; h != nil {
			minutes = int(math.Round(*h * 60))
		}
		requests[i] = domain.PlaceRequest{Place: pl, DurationMinutes: minutes}
	}

	daysCount, window := ResolveWindow(it)
	segments := BuildSegments(requests, daysCount, p.cfg.MaxSlotsPerBatch)

	// Concurrent runs for the same itinerary must not interleave their
	// delete+insert phases; the lock spans oracle calls too so a slow run
	// cannot overwrite a newer one's schedule.
	unlock, err := p.locks.Lock(ctx, it.ID)
	if err != nil {
		return nil, fmt.Errorf("optimize itinerary %d: acquire lock: %w", it.ID, err)
	}
	defer unlock()

	// Segments are independent sub-problems; dispatch them concurrently
	// and abort all on the first failure.
	results := make([]ports.OptimizationResult, len(segments))
	g, gctx := errgroup.WithContext(ctx)
	for i, seg := range segments {
		if len(seg.Places) == 0 {
			// More segments than places leaves trailing segments empty.
			// The oracle rejects zero-job batches, so never dispatch one;
			// the segment's day-slots count as unused when stitched.
			continue
		}
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, p.cfg.OracleTimeout)
			defer cancel()

			vehicles, jobs := buildBatch(it, seg, window)
			res, err := p.optimizer.Optimize(callCtx, vehicles, jobs)
			if err != nil {
				return fmt.Errorf("segment %d (days %d-%d): %w: %w",
					i, seg.DayOffset+1, seg.DayOffset+seg.Days, ports.ErrOptimizerUnavailable, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("optimize itinerary %d: %w", it.ID, err)
	}

	st := newStitcher(it.ID)
	for i, seg := range segments {
		if err := st.add(seg, results[i]); err != nil {
			return nil, fmt.Errorf("optimize itinerary %d: %w", it.ID, err)
		}
	}

	routes := make([]*domain.DailyRoute, 0, len(st.geometryByDay))
	for day := 1; day <= daysCount; day++ {
		if geom, ok := st.geometryByDay[day]; ok {
			routes = append(routes, &domain.DailyRoute{ItineraryID: it.ID, Day: day, Geometry: geom})
		}
	}

	// A cancelled caller gets no write; once the store commits, the new
	// schedule stands regardless of later cancellation.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("optimize itinerary %d: %w", it.ID, err)
	}
	if err := p.store.ReplaceSchedule(ctx, it.ID, st.visits, routes); err != nil {
		return nil, fmt.Errorf("optimize itinerary %d: replace schedule: %w", it.ID, err)
	}

	return assembleDays(it.ID, daysCount, st.visits, st.geometryByDay, st.status), nil
}

// buildBatch translates one segment into the optimizer's wire units: one
// vehicle per day-slot anchored at the itinerary's start point, one job
// per place with its service time in seconds.
func buildBatch(it *domain.Itinerary, seg Segment, window DayWindow) ([]ports.Vehicle, []ports.Job) {
	vehicles := make([]ports.Vehicle, seg.Days)
	for slot := 0; slot < seg.Days; slot++ {
		vehicles[slot] = ports.Vehicle{
			ID:         slot,
			Start:      it.StartPoint,
			End:        it.StartPoint,
			TimeWindow: [2]int{window.StartSeconds, window.EndSeconds},
		}
	}

	jobs := make([]ports.Job, len(seg.Places))
	for i, req := range seg.Places {
		jobs[i] = ports.Job{
			ID:             i,
			Location:       req.Place.Location,
			ServiceSeconds: req.DurationMinutes * 60,
		}
	}

	return vehicles, jobs
}
