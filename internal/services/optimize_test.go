package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/czaja307/TravelPlanner-backend/internal/adapters/lock"
	"github.com/czaja307/TravelPlanner-backend/internal/adapters/optimization"
	"github.com/czaja307/TravelPlanner-backend/internal/domain"
	"github.com/czaja307/TravelPlanner-backend/internal/ports"
)

type fakeRepo struct {
	itineraries map[int64]*domain.Itinerary
	places      map[int64]*domain.Place
}

func (r *fakeRepo) GetItinerary(ctx context.Context, id int64) (*domain.Itinerary, error) {
	it, ok := r.itineraries[id]
	if !ok {
		return nil, fmt.Errorf("get itinerary %d: %w", id, ports.ErrItineraryNotFound)
	}
	return it, nil
}

func (r *fakeRepo) GetPlaces(ctx context.Context, ids []int64) ([]*domain.Place, error) {
	out := make([]*domain.Place, 0, len(ids))
	for _, id := range ids {
		p, ok := r.places[id]
		if !ok {
			return nil, fmt.Errorf("get places: id %d: %w", id, ports.ErrPlaceNotFound)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepo) ListVisits(ctx context.Context, itineraryID int64) ([]*domain.Visit, error) {
	return nil, nil
}

// fakeStore replaces its whole state on success and leaves it untouched on
// injected failure, mirroring the transactional contract.
type fakeStore struct {
	mu       sync.Mutex
	failWith error
	replaces int
	visits   []*domain.Visit
	routes   []*domain.DailyRoute
}

func (s *fakeStore) ReplaceSchedule(ctx context.Context, itineraryID int64, visits []*domain.Visit, routes []*domain.DailyRoute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.replaces++
	s.visits = visits
	s.routes = routes
	return nil
}

func testItinerary() *domain.Itinerary {
	return &domain.Itinerary{
		ID:         1,
		Title:      "Krakow long weekend",
		StartPoint: domain.Coordinates{Lon: 19.9372, Lat: 50.0619},
		StartDate:  time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), // 4 days
		StartHour:  domain.TimeOfDay{Hour: 9},
		EndHour:    domain.TimeOfDay{Hour: 19},
	}
}

func testRepo() *fakeRepo {
	return &fakeRepo{
		itineraries: map[int64]*domain.Itinerary{1: testItinerary()},
		places: map[int64]*domain.Place{
			1: {ID: 1, Name: "Wawel Castle", Category: "museum", Location: domain.Coordinates{Lon: 19.9354, Lat: 50.0541}},
			2: {ID: 2, Name: "Market Square", Category: "monument", Location: domain.Coordinates{Lon: 19.9373, Lat: 50.0617}},
			3: {ID: 3, Name: "Kazimierz", Category: "market", Location: domain.Coordinates{Lon: 19.9449, Lat: 50.0489}},
			4: {ID: 4, Name: "Planty", Category: "park", Location: domain.Coordinates{Lon: 19.9411, Lat: 50.0646}},
			5: {ID: 5, Name: "Mound", Category: "viewpoint", Location: domain.Coordinates{Lon: 19.8933, Lat: 50.0549}},
		},
	}
}

func fivePlaces() []PlaceSelection {
	hours := 2.0
	return []PlaceSelection{
		{PlaceID: 1, DurationHours: &hours}, // overrides the museum estimate
		{PlaceID: 2},
		{PlaceID: 3},
		{PlaceID: 4},
		{PlaceID: 5},
	}
}

func newTestPlanner(repo ports.TripRepository, optimizer ports.Optimizer, store ports.ScheduleStore) *Planner {
	return NewPlanner(repo, optimizer, store, lock.NewMemoryLocker(), PlannerConfig{
		MaxSlotsPerBatch: 3,
		OracleTimeout:    5 * time.Second,
	})
}

// Scripted oracle for the 4-day/5-place scenario: the first segment (3
// jobs) is fully satisfied, the second (2 jobs) drops one place.
func scenarioScript(vehicles []ports.Vehicle, jobs []ports.Job) (ports.OptimizationResult, error) {
	switch len(jobs) {
	case 3:
		return ports.OptimizationResult{
			Routes: []ports.VehicleRoute{
				{VehicleID: 0, Geometry: "g1", Steps: []ports.Step{
					{Type: "start"},
					{Type: ports.StepTypeJob, JobID: 0, ArrivalSeconds: 9 * 3600},
					{Type: "end"},
				}},
				{VehicleID: 1, Geometry: "g2", Steps: []ports.Step{
					{Type: ports.StepTypeJob, JobID: 1, ArrivalSeconds: 10 * 3600},
				}},
				{VehicleID: 2, Geometry: "g3", Steps: []ports.Step{
					{Type: ports.StepTypeJob, JobID: 2, ArrivalSeconds: 11 * 3600},
				}},
			},
		}, nil
	case 2:
		return ports.OptimizationResult{
			Routes: []ports.VehicleRoute{
				{VehicleID: 0, Geometry: "g4", Steps: []ports.Step{
					{Type: ports.StepTypeJob, JobID: 0, ArrivalSeconds: 12 * 3600},
				}},
			},
			Unassigned: []int{1},
		}, nil
	default:
		return ports.OptimizationResult{}, fmt.Errorf("unexpected batch of %d jobs", len(jobs))
	}
}

func TestOptimizeItinerary(t *testing.T) {
	repo := testRepo()
	oracle := optimization.NewMockOptimizer(scenarioScript)
	store := &fakeStore{}
	planner := newTestPlanner(repo, oracle, store)

	schedule, err := planner.OptimizeItinerary(context.Background(), OptimizeRequest{
		ItineraryID: 1,
		Places:      fivePlaces(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if schedule.ItineraryID != 1 {
		t.Fatalf("itinerary = %d, want 1", schedule.ItineraryID)
	}
	if len(schedule.Days) != 4 {
		t.Fatalf("expected 4 days, got %d", len(schedule.Days))
	}
	if schedule.Status != domain.StatusPlacesDropped {
		t.Fatalf("status = %d, want %d", schedule.Status, domain.StatusPlacesDropped)
	}

	// Segment 0 covers days 1-3, segment 1 covers day 4.
	for day := 1; day <= 4; day++ {
		d := schedule.Days[day-1]
		if d.Day != day {
			t.Fatalf("day numbering wrong at index %d: %+v", day-1, d)
		}
		if len(d.Visits) != 1 {
			t.Fatalf("day %d has %d visits, want 1", day, len(d.Visits))
		}
	}
	if got := schedule.Days[0].Visits[0].Place.Name; got != "Wawel Castle" {
		t.Fatalf("day 1 visit = %q, want Wawel Castle", got)
	}
	if got := schedule.Days[3].Visits[0].Place.Name; got != "Planty" {
		t.Fatalf("day 4 visit = %q, want Planty (first place of segment 1)", got)
	}
	if got := schedule.Days[3].Visits[0].StartTime; got != "12:00:00" {
		t.Fatalf("day 4 start time = %q, want 12:00:00", got)
	}
	if schedule.Days[3].Geometry != "g4" {
		t.Fatalf("day 4 geometry = %q, want g4", schedule.Days[3].Geometry)
	}

	// Caller-provided hours beat the category estimate; the rest use it.
	if got := schedule.Days[0].Visits[0].DurationMinutes; got != 120 {
		t.Fatalf("day 1 duration = %d, want 120 (2h override)", got)
	}
	if got := schedule.Days[1].Visits[0].DurationMinutes; got != 30 {
		t.Fatalf("day 2 duration = %d, want 30 (monument estimate)", got)
	}

	if store.replaces != 1 {
		t.Fatalf("store replaces = %d, want 1", store.replaces)
	}
	if len(store.visits) != 4 {
		t.Fatalf("stored %d visits, want 4", len(store.visits))
	}
	if len(store.routes) != 4 {
		t.Fatalf("stored %d daily routes, want 4", len(store.routes))
	}

	// Two batches, each shaped per its segment.
	calls := oracle.Calls()
	if len(calls) != 2 {
		t.Fatalf("oracle called %d times, want 2", len(calls))
	}
	for _, call := range calls {
		for _, v := range call.Vehicles {
			if v.TimeWindow != [2]int{9 * 3600, 19 * 3600} {
				t.Fatalf("vehicle window = %v", v.TimeWindow)
			}
			if v.Start != (domain.Coordinates{Lon: 19.9372, Lat: 50.0619}) || v.Start != v.End {
				t.Fatalf("vehicle anchors wrong: %+v", v)
			}
		}
		switch len(call.Jobs) {
		case 3:
			if len(call.Vehicles) != 3 {
				t.Fatalf("segment 0: %d vehicles, want 3", len(call.Vehicles))
			}
			if call.Jobs[0].ServiceSeconds != 120*60 {
				t.Fatalf("job 0 service = %d, want %d", call.Jobs[0].ServiceSeconds, 120*60)
			}
		case 2:
			if len(call.Vehicles) != 1 {
				t.Fatalf("segment 1: %d vehicles, want 1", len(call.Vehicles))
			}
		default:
			t.Fatalf("unexpected batch of %d jobs", len(call.Jobs))
		}
	}
}

func TestOptimizeItineraryFewerPlacesThanSegments(t *testing.T) {
	// A 9-day trip at cap 3 makes 3 segments; with 2 places the third
	// segment is empty and must never reach the oracle.
	repo := testRepo()
	repo.itineraries[1].EndDate = time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC)

	oracle := optimization.NewMockOptimizer(func(vehicles []ports.Vehicle, jobs []ports.Job) (ports.OptimizationResult, error) {
		if len(jobs) == 0 {
			return ports.OptimizationResult{}, errors.New("zero-job batch dispatched")
		}
		return ports.OptimizationResult{
			Routes: []ports.VehicleRoute{
				{VehicleID: 0, Geometry: "g", Steps: []ports.Step{
					{Type: ports.StepTypeJob, JobID: 0, ArrivalSeconds: 10 * 3600},
				}},
			},
		}, nil
	})
	store := &fakeStore{}
	planner := newTestPlanner(repo, oracle, store)

	schedule, err := planner.OptimizeItinerary(context.Background(), OptimizeRequest{
		ItineraryID: 1,
		Places:      []PlaceSelection{{PlaceID: 1}, {PlaceID: 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := len(oracle.Calls()); n != 2 {
		t.Fatalf("oracle called %d times, want 2 (empty segment skipped)", n)
	}
	if len(schedule.Days) != 9 {
		t.Fatalf("expected 9 days, got %d", len(schedule.Days))
	}
	// The empty segment's day-slots are idle days, never a failure.
	if schedule.Status != domain.StatusDaysUnused {
		t.Fatalf("status = %d, want %d", schedule.Status, domain.StatusDaysUnused)
	}
	if store.replaces != 1 || len(store.visits) != 2 {
		t.Fatalf("store state wrong: replaces=%d visits=%d", store.replaces, len(store.visits))
	}
	// Places land on days 1 and 4 (first slot of each non-empty segment).
	if len(schedule.Days[0].Visits) != 1 || len(schedule.Days[3].Visits) != 1 {
		t.Fatalf("visit placement wrong: day1=%d day4=%d",
			len(schedule.Days[0].Visits), len(schedule.Days[3].Visits))
	}
}

func TestOptimizeItineraryUnknownIDs(t *testing.T) {
	repo := testRepo()
	oracle := optimization.NewMockOptimizer(scenarioScript)
	store := &fakeStore{}
	planner := newTestPlanner(repo, oracle, store)

	_, err := planner.OptimizeItinerary(context.Background(), OptimizeRequest{ItineraryID: 99, Places: fivePlaces()})
	if !errors.Is(err, ports.ErrItineraryNotFound) {
		t.Fatalf("expected ErrItineraryNotFound, got %v", err)
	}

	_, err = planner.OptimizeItinerary(context.Background(), OptimizeRequest{
		ItineraryID: 1,
		Places:      []PlaceSelection{{PlaceID: 1}, {PlaceID: 77}},
	})
	if !errors.Is(err, ports.ErrPlaceNotFound) {
		t.Fatalf("expected ErrPlaceNotFound, got %v", err)
	}

	// Preflight failures must happen before any oracle call or write.
	if n := len(oracle.Calls()); n != 0 {
		t.Fatalf("oracle called %d times, want 0", n)
	}
	if store.replaces != 0 {
		t.Fatalf("store replaces = %d, want 0", store.replaces)
	}
}

func TestOptimizeItinerarySegmentFailureAbortsRun(t *testing.T) {
	repo := testRepo()
	oracle := optimization.NewMockOptimizer(func(vehicles []ports.Vehicle, jobs []ports.Job) (ports.OptimizationResult, error) {
		if len(jobs) == 2 {
			return ports.OptimizationResult{}, errors.New("503 service unavailable")
		}
		return scenarioScript(vehicles, jobs)
	})
	store := &fakeStore{visits: []*domain.Visit{{ID: 10, Day: 1}}}
	planner := newTestPlanner(repo, oracle, store)

	_, err := planner.OptimizeItinerary(context.Background(), OptimizeRequest{ItineraryID: 1, Places: fivePlaces()})
	if !errors.Is(err, ports.ErrOptimizerUnavailable) {
		t.Fatalf("expected ErrOptimizerUnavailable, got %v", err)
	}

	// The earlier-succeeding segment must not be committed.
	if store.replaces != 0 {
		t.Fatalf("store replaces = %d, want 0", store.replaces)
	}
	if len(store.visits) != 1 || store.visits[0].ID != 10 {
		t.Fatalf("prior schedule was modified: %+v", store.visits)
	}
}

func TestOptimizeItineraryStoreFailureKeepsPriorSchedule(t *testing.T) {
	repo := testRepo()
	oracle := optimization.NewMockOptimizer(scenarioScript)
	store := &fakeStore{
		failWith: errors.New("insert visit: connection reset"),
		visits:   []*domain.Visit{{ID: 10, Day: 1}},
		routes:   []*domain.DailyRoute{{ID: 20, Day: 1, Geometry: "old"}},
	}
	planner := newTestPlanner(repo, oracle, store)

	_, err := planner.OptimizeItinerary(context.Background(), OptimizeRequest{ItineraryID: 1, Places: fivePlaces()})
	if err == nil {
		t.Fatalf("expected store failure to surface")
	}

	if len(store.visits) != 1 || store.visits[0].ID != 10 {
		t.Fatalf("prior visits were modified: %+v", store.visits)
	}
	if len(store.routes) != 1 || store.routes[0].Geometry != "old" {
		t.Fatalf("prior routes were modified: %+v", store.routes)
	}
}

func TestOptimizeItineraryCancelledBeforeCommit(t *testing.T) {
	repo := testRepo()
	ctx, cancel := context.WithCancel(context.Background())

	// The oracle succeeds but the caller goes away mid-run.
	oracle := optimization.NewMockOptimizer(func(vehicles []ports.Vehicle, jobs []ports.Job) (ports.OptimizationResult, error) {
		res, err := scenarioScript(vehicles, jobs)
		cancel()
		return res, err
	})
	store := &fakeStore{}
	planner := newTestPlanner(repo, oracle, store)

	_, err := planner.OptimizeItinerary(ctx, OptimizeRequest{ItineraryID: 1, Places: fivePlaces()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if store.replaces != 0 {
		t.Fatalf("store replaces = %d, want 0 after cancellation", store.replaces)
	}
}

func TestOptimizeItinerarySerializesSameItinerary(t *testing.T) {
	repo := testRepo()

	var mu sync.Mutex
	inFlight := 0
	maxInFlight := 0

	oracle := optimization.NewMockOptimizer(func(vehicles []ports.Vehicle, jobs []ports.Job) (ports.OptimizationResult, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return scenarioScript(vehicles, jobs)
	})
	store := &fakeStore{}
	planner := newTestPlanner(repo, oracle, store)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := planner.OptimizeItinerary(context.Background(), OptimizeRequest{ItineraryID: 1, Places: fivePlaces()}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	// Within one run both segments may fly in parallel, but runs for the
	// same itinerary must not overlap (each run is 2 concurrent calls).
	if maxInFlight > 2 {
		t.Fatalf("observed %d concurrent oracle calls, want <= 2", maxInFlight)
	}
	if store.replaces != 3 {
		t.Fatalf("store replaces = %d, want 3", store.replaces)
	}
}
