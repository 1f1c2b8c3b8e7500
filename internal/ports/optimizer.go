package ports

import (
	"context"
	"errors"

	"github.com/czaja307/TravelPlanner-backend/internal/domain"
)

// ErrOptimizerUnavailable marks failures of the external routing service
// (network errors, HTTP errors, timeouts). Callers treat it as fatal for
// the whole optimization run.
var ErrOptimizerUnavailable = errors.New("routing optimizer unavailable")

// Vehicle is one day-slot's routing unit submitted to the optimizer.
// IDs are slot indices local to a single call, starting at 0.
type Vehicle struct {
	ID         int
	Start      domain.Coordinates
	End        domain.Coordinates
	TimeWindow [2]int // [start, end] in seconds of day
}

// Job is one place's visit request submitted to the optimizer.
// IDs index the segment's place list, starting at 0.
type Job struct {
	ID             int
	Location       domain.Coordinates
	ServiceSeconds int
}

// StepTypeJob identifies service stops among route steps; other step types
// (start, end, break) carry no job reference.
const StepTypeJob = "job"

// Step is one element of a vehicle's computed route.
type Step struct {
	Type           string
	JobID          int
	ArrivalSeconds int
}

// VehicleRoute is the computed schedule of one used vehicle, with the
// encoded path geometry for the whole day.
type VehicleRoute struct {
	VehicleID int
	Geometry  string
	Steps     []Step
}

// OptimizationResult is the optimizer's answer for one batch: routes for
// the vehicles it used plus the jobs it could not assign anywhere.
type OptimizationResult struct {
	Routes     []VehicleRoute
	Unassigned []int // job IDs
}

// Contract for the external vehicle-routing solver. One call covers one
// capacity-bounded batch of vehicles and jobs.
type Optimizer interface {
	Optimize(ctx context.Context, vehicles []Vehicle, jobs []Job) (OptimizationResult, error)
}
