package dense

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/solvenv/solvenv/pkg/solver"
)

// Config configures the dense backend.
type Config struct {
	// Seats is the license pool capacity. Zero means one seat.
	Seats int

	// LicensePath, when set, must point to an existing file for the
	// backend to report itself available. Leaving it empty skips the
	// check, which matches a node-locked install.
	LicensePath string
}

// Backend implements solver.Backend over the in-process simplex.
type Backend struct {
	pool        *LicensePool
	licensePath string
}

// New creates a dense backend with its own license pool.
func New(cfg Config) *Backend {
	return &Backend{
		pool:        NewLicensePool(cfg.Seats),
		licensePath: cfg.LicensePath,
	}
}

// Name identifies the backend.
func (b *Backend) Name() string {
	return "dense"
}

// Pool exposes the backend's license pool.
func (b *Backend) Pool() *LicensePool {
	return b.pool
}

// CheckAvailable verifies static conditions only: the license file, when
// configured, is locatable. It never touches the seat pool, so a passing
// or failing check has no side effects.
func (b *Backend) CheckAvailable(_ context.Context) error {
	if b.licensePath == "" {
		return nil
	}
	if _, err := os.Stat(b.licensePath); err != nil {
		return fmt.Errorf("license file not locatable: %w", err)
	}
	return nil
}

// NewEnv creates an unstarted environment. No seat is claimed until Start.
func (b *Backend) NewEnv(_ context.Context) (solver.BackendEnv, error) {
	return &Env{backend: b, params: make(map[string]interface{})}, nil
}

// Env is a dense backend environment. It records staged parameters and
// holds one license seat between Start and Close.
type Env struct {
	mu      sync.Mutex
	backend *Backend
	params  map[string]interface{}
	started bool
	closed  bool
}

// SetParam stages an environment parameter. Valid only before Start.
func (e *Env) SetParam(name string, value interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("environment closed")
	}
	if e.started {
		return fmt.Errorf("parameter %q set after environment start", name)
	}
	e.params[name] = value
	return nil
}

// Params returns a copy of the recorded environment parameters.
func (e *Env) Params() map[string]interface{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]interface{}, len(e.params))
	for k, v := range e.params {
		out[k] = v
	}
	return out
}

// Start claims a license seat. A staged ComputeServer parameter causes a
// connection failure here, at start time, the same way a remote solver
// rejects an unreachable compute server.
func (e *Env) Start(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("environment closed")
	}
	if e.started {
		return fmt.Errorf("environment already started")
	}
	if server, ok := e.params["ComputeServer"]; ok {
		return fmt.Errorf("could not resolve host %v", server)
	}
	if err := e.backend.pool.Acquire(); err != nil {
		return err
	}
	e.started = true
	return nil
}

// NewModel creates a model in this environment.
func (e *Env) NewModel(_ context.Context) (solver.BackendModel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started || e.closed {
		return nil, fmt.Errorf("environment not started")
	}
	return &Model{env: e, params: make(map[string]interface{})}, nil
}

// Close releases the seat. Idempotent.
func (e *Env) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.started {
		e.started = false
		e.backend.pool.Release()
	}
	return nil
}

// Model is a dense backend model handle.
type Model struct {
	mu     sync.Mutex
	env    *Env
	params map[string]interface{}
	closed bool
}

// SetParam applies a model parameter.
func (m *Model) SetParam(name string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("model closed")
	}
	m.params[name] = value
	return nil
}

// Params returns a copy of the recorded model parameters.
func (m *Model) Params() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]interface{}, len(m.params))
	for k, v := range m.params {
		out[k] = v
	}
	return out
}

// Optimize solves the problem with the two-phase simplex. The
// IterationLimit parameter caps pivots when set.
func (m *Model) Optimize(_ context.Context, p *solver.Problem) (*solver.Solution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, fmt.Errorf("model closed")
	}
	maxIter := defaultIterationLimit
	if raw, ok := m.params["IterationLimit"]; ok {
		switch v := raw.(type) {
		case int:
			maxIter = v
		case float64:
			maxIter = int(v)
		default:
			return nil, fmt.Errorf("IterationLimit must be numeric, got %T", raw)
		}
	}
	return solveSimplex(p, maxIter)
}

// Close releases the model. Idempotent.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
