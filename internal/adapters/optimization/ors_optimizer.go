package optimization

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/czaja307/TravelPlanner-backend/internal/metrics"
	"github.com/czaja307/TravelPlanner-backend/internal/platform/obs"
	"github.com/czaja307/TravelPlanner-backend/internal/ports"
)

// ORSOptimizer implements the Optimizer port against the OpenRouteService
// optimization endpoint (a hosted VROOM solver).
//
// The client is explicitly configured (key, endpoint, limits) and safe for
// concurrent use. ORS enforces per-minute quotas on the optimization
// endpoint, so calls pass through a client-side rate limiter.
type ORSOptimizer struct {
	session *http.Client
	apiKey  string
	baseURL string
	limiter *rate.Limiter
}

type ORSConfig struct {
	APIKey  string
	BaseURL string        // defaults to the public ORS API
	Timeout time.Duration // per-request HTTP timeout
	// CallsPerMinute caps outgoing optimization calls; 0 disables limiting.
	CallsPerMinute int
}

func NewORSOptimizer(cfg ORSConfig) (*ORSOptimizer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openrouteservice.org"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.CallsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.CallsPerMinute)/60.0), cfg.CallsPerMinute)
	}

	return &ORSOptimizer{
		session: &http.Client{Timeout: cfg.Timeout},
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		limiter: limiter,
	}, nil
}

type orsVehicle struct {
	ID         int       `json:"id"`
	Start      []float64 `json:"start"`
	End        []float64 `json:"end"`
	TimeWindow [2]int    `json:"time_window"`
}

type orsJob struct {
	ID       int       `json:"id"`
	Location []float64 `json:"location"`
	Service  int       `json:"service"`
}

type orsOptions struct {
	Geometry bool `json:"g"`
}

type optimizationRequest struct {
	Vehicles []orsVehicle `json:"vehicles"`
	Jobs     []orsJob     `json:"jobs"`
	Options  orsOptions   `json:"options"`
}

type orsStep struct {
	Type    string `json:"type"`
	Job     int    `json:"job"`
	Arrival int    `json:"arrival"`
}

type orsRoute struct {
	Vehicle  int       `json:"vehicle"`
	Steps    []orsStep `json:"steps"`
	Geometry string    `json:"geometry"`
}

type orsUnassigned struct {
	ID int `json:"id"`
}

type optimizationResponse struct {
	Routes     []orsRoute      `json:"routes"`
	Unassigned []orsUnassigned `json:"unassigned"`
}

// Optimize submits one batch of vehicles and jobs and decodes the solver's
// answer. The geometry flag is always set so every used vehicle comes back
// with an encoded path.
func (o *ORSOptimizer) Optimize(ctx context.Context, vehicles []ports.Vehicle, jobs []ports.Job) (_ ports.OptimizationResult, err error) {
	defer obs.Time(ctx, "ors.Optimize")(&err)

	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.OracleCallDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	if len(vehicles) == 0 {
		return ports.OptimizationResult{}, errors.New("optimize: at least one vehicle is required")
	}
	if len(jobs) == 0 {
		// VROOM rejects zero-job requests with a 4xx.
		return ports.OptimizationResult{}, errors.New("optimize: at least one job is required")
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return ports.OptimizationResult{}, fmt.Errorf("optimize: rate limit wait: %w", err)
	}

	body := optimizationRequest{
		Vehicles: make([]orsVehicle, 0, len(vehicles)),
		Jobs:     make([]orsJob, 0, len(jobs)),
		Options:  orsOptions{Geometry: true},
	}
	for _, v := range vehicles {
		body.Vehicles = append(body.Vehicles, orsVehicle{
			ID:         v.ID,
			Start:      v.Start.CoordsToList(),
			End:        v.End.CoordsToList(),
			TimeWindow: v.TimeWindow,
		})
	}
	for _, j := range jobs {
		body.Jobs = append(body.Jobs, orsJob{
			ID:       j.ID,
			Location: j.Location.CoordsToList(),
			Service:  j.ServiceSeconds,
		})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return ports.OptimizationResult{}, fmt.Errorf("optimize: marshal request: %w", err)
	}

	endpoint := o.baseURL + "/optimization"
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.OptimizationResult{}, fmt.Errorf("optimize: request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded optimizationResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.OptimizationResult{}, fmt.Errorf("optimize: decode response: %w", err)
	}

	out := ports.OptimizationResult{
		Routes:     make([]ports.VehicleRoute, 0, len(decoded.Routes)),
		Unassigned: make([]int, 0, len(decoded.Unassigned)),
	}
	for _, r := range decoded.Routes {
		steps := make([]ports.Step, 0, len(r.Steps))
		for _, s := range r.Steps {
			steps = append(steps, ports.Step{
				Type:           s.Type,
				JobID:          s.Job,
				ArrivalSeconds: s.Arrival,
			})
		}
		out.Routes = append(out.Routes, ports.VehicleRoute{
			VehicleID: r.Vehicle,
			Geometry:  r.Geometry,
			Steps:     steps,
		})
	}
	for _, u := range decoded.Unassigned {
		out.Unassigned = append(out.Unassigned, u.ID)
	}

	return out, nil
}
