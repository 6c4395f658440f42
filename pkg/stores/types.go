package stores

import "time"

// RunStatus represents the status of a solve run.
type RunStatus string

const (
	RunStatusRunning    RunStatus = "running"
	RunStatusOptimal    RunStatus = "optimal"
	RunStatusInfeasible RunStatus = "infeasible"
	RunStatusUnbounded  RunStatus = "unbounded"
	RunStatusLimit      RunStatus = "limit"
	RunStatusFailed     RunStatus = "failed"
)

// Run represents a single solve call routed through an adapter.
type Run struct {
	ID          string     `json:"id"`
	Backend     string     `json:"backend"`
	Problem     string     `json:"problem"`
	SweepID     *string    `json:"sweep_id,omitempty"`
	Status      RunStatus  `json:"status"`
	Objective   *float64   `json:"objective,omitempty"`
	Iterations  int        `json:"iterations"`
	DurationMS  int64      `json:"duration_ms"`
	Error       *string    `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Sweep groups the runs of one parameter sweep.
type Sweep struct {
	ID        string    `json:"id"`
	Backend   string    `json:"backend"`
	Problem   string    `json:"problem"`
	Param     string    `json:"param"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}
