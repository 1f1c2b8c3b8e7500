package optimization

import (
	"context"
	"errors"
	"sync"

	"github.com/czaja307/TravelPlanner-backend/internal/ports"
)

// MockCall records one Optimize invocation for assertions.
type MockCall struct {
	Vehicles []ports.Vehicle
	Jobs     []ports.Job
}

// MockOptimizer delegates to a scripted function and records every call.
// Segment calls may arrive in any order under the planner's concurrent
// dispatch, so scripts should key off the batch contents, not call order.
type MockOptimizer struct {
	Fn func(vehicles []ports.Vehicle, jobs []ports.Job) (ports.OptimizationResult, error)

	mu    sync.Mutex
	calls []MockCall
}

func NewMockOptimizer(fn func(vehicles []ports.Vehicle, jobs []ports.Job) (ports.OptimizationResult, error)) *MockOptimizer {
	return &MockOptimizer{Fn: fn}
}

func (m *MockOptimizer) Optimize(ctx context.Context, vehicles []ports.Vehicle, jobs []ports.Job) (ports.OptimizationResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Vehicles: vehicles, Jobs: jobs})
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ports.OptimizationResult{}, err
	}
	if m.Fn == nil {
		return ports.OptimizationResult{}, errors.New("mock optimizer: no script configured")
	}
	return m.Fn(vehicles, jobs)
}

// Calls returns the recorded invocations, in arrival order.
func (m *MockOptimizer) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}
