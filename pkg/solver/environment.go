package solver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/solvenv/solvenv/pkg/telemetry"
)

// Environment is a managed handle over a backend's licensed environment.
// It stages environment-scoped parameters before start, tracks the model
// handles attached to it, and guarantees deterministic release: Close
// transitively closes attached models and frees the license slot
// immediately, never deferring to finalization.
//
// A failed Start leaves the handle reusable; the next Start performs a
// fresh acquisition attempt.
type Environment struct {
	mu      sync.Mutex
	backend Backend
	id      string

	env     BackendEnv
	started bool
	closed  bool

	// pending holds staged environment parameters in application order.
	pending []Param

	// applied records parameters already applied at start, so re-staging
	// an identical value on a started environment stays a no-op.
	applied map[string]interface{}

	models map[*ModelHandle]struct{}

	log     *telemetry.Logger
	metrics *telemetry.Metrics
}

// EnvConfig carries optional collaborators for a managed environment.
type EnvConfig struct {
	// Logger receives lifecycle events. Nil discards them.
	Logger *telemetry.Logger

	// Metrics receives acquisition and liveness metrics. Nil disables them.
	Metrics *telemetry.Metrics
}

// NewEnvironment creates an unstarted managed environment over the given
// backend. The environment acquires no license until Start.
func NewEnvironment(backend Backend, cfg EnvConfig) *Environment {
	log := cfg.Logger
	if log == nil {
		log = telemetry.Discard()
	}
	id := uuid.NewString()
	return &Environment{
		backend: backend,
		id:      id,
		applied: make(map[string]interface{}),
		models:  make(map[*ModelHandle]struct{}),
		log:     log.WithField("env_id", id).WithField("backend", backend.Name()),
		metrics: cfg.Metrics,
	}
}

// ID returns the environment's identifier used in logs and the run store.
func (e *Environment) ID() string {
	return e.id
}

// Configure stages an environment-scoped parameter for application before
// start. Staging after start is an invalid-state error, except when the
// value equals one already applied, which is a no-op: each setting is
// applied exactly once.
func (e *Environment) Configure(name string, value interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return NewInvalidStateError("environment is closed", nil).WithOp("configure").WithParam(name)
	}
	canonical := CanonicalName(name)
	if e.started {
		if prev, ok := e.applied[canonical]; ok && prev == value {
			return nil
		}
		return NewInvalidStateError(
			"environment parameter staged after environment start", nil,
		).WithOp("configure").WithParam(canonical)
	}
	for i := range e.pending {
		if e.pending[i].Name == canonical {
			e.pending[i].Value = value
			return nil
		}
	}
	e.pending = append(e.pending, Param{Name: canonical, Value: value})
	return nil
}

// Start applies staged parameters and acquires the licensed resource.
// Idempotent once started. Every failed call resets the handle so the next
// call performs a fresh acquisition: one contention failure never poisons
// later attempts.
func (e *Environment) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return NewInvalidStateError("environment is closed", nil).WithOp("start")
	}
	if e.started {
		return nil
	}

	env, err := e.backend.NewEnv(ctx)
	if err != nil {
		e.metrics.RecordAcquisition("error")
		return NewSolveError("backend could not create environment", err).WithOp("start")
	}

	for _, p := range e.pending {
		if err := env.SetParam(p.Name, p.Value); err != nil {
			_ = env.Close()
			e.metrics.RecordAcquisition("error")
			return NewSolveError("backend rejected environment parameter", err).
				WithOp("start").WithParam(p.Name)
		}
	}

	if err := env.Start(ctx); err != nil {
		_ = env.Close()
		if errors.Is(err, ErrLicenseBusy) {
			e.metrics.RecordAcquisition("contended")
			e.log.Debug("environment start contended")
			return NewUnavailableError("licensed environment is held by another handle", err).WithOp("start")
		}
		e.metrics.RecordAcquisition("error")
		return NewSolveError("backend could not start environment", err).WithOp("start")
	}

	e.env = env
	e.started = true
	for _, p := range e.pending {
		e.applied[p.Name] = p.Value
	}
	e.pending = nil
	e.metrics.RecordAcquisition("acquired")
	e.log.Debug("environment started")
	return nil
}

// NewModel creates a model handle bound to this environment. The
// environment must be started.
func (e *Environment) NewModel(ctx context.Context) (*ModelHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, NewInvalidStateError("environment is closed", nil).WithOp("new-model")
	}
	if !e.started {
		return nil, NewInvalidStateError("environment not started", nil).WithOp("new-model")
	}

	bm, err := e.env.NewModel(ctx)
	if err != nil {
		return nil, NewSolveError("backend could not create model", err).WithOp("new-model")
	}
	m := &ModelHandle{env: e, bm: bm}
	e.models[m] = struct{}{}
	e.metrics.SetLiveModels(e.backend.Name(), len(e.models))
	return m, nil
}

// Started reports whether the environment holds a live backend environment.
func (e *Environment) Started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

// LiveModels returns the number of model handles still attached.
func (e *Environment) LiveModels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.models)
}

// Close releases the environment and transitively closes any attached
// model handles. Idempotent: closing an already-closed environment is a
// no-op. Release is immediate, so a single-use license freed here can be
// re-acquired by the very next Start elsewhere.
func (e *Environment) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	attached := make([]*ModelHandle, 0, len(e.models))
	for m := range e.models {
		attached = append(attached, m)
	}
	e.models = make(map[*ModelHandle]struct{})
	env := e.env
	e.env = nil
	started := e.started
	e.started = false
	e.mu.Unlock()

	var errs []error
	for _, m := range attached {
		if err := m.close(false); err != nil {
			errs = append(errs, err)
		}
	}
	if env != nil {
		if err := env.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close backend environment: %w", err))
		}
	}
	if started {
		e.metrics.RecordRelease()
		e.metrics.SetLiveModels(e.backend.Name(), 0)
		e.log.Debug("environment released")
	}
	return errors.Join(errs...)
}

// detach removes a model handle from the live set.
func (e *Environment) detach(m *ModelHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.models[m]; ok {
		delete(e.models, m)
		e.metrics.SetLiveModels(e.backend.Name(), len(e.models))
	}
}

// ModelHandle is a managed per-solve model bound to one environment.
type ModelHandle struct {
	mu     sync.Mutex
	env    *Environment
	bm     BackendModel
	closed bool
}

// SetParam applies a model-scoped parameter.
func (m *ModelHandle) SetParam(name string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return NewInvalidStateError("model is closed", nil).WithOp("set-param").WithParam(name)
	}
	if err := m.bm.SetParam(CanonicalName(name), value); err != nil {
		return NewSolveError("backend rejected model parameter", err).WithParam(name)
	}
	return nil
}

// Optimize solves the given problem on this model.
func (m *ModelHandle) Optimize(ctx context.Context, p *Problem) (*Solution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, NewInvalidStateError("model is closed", nil).WithOp("optimize")
	}
	sol, err := m.bm.Optimize(ctx, p)
	if err != nil {
		return nil, NewSolveError("backend optimization failed", err).WithOp("optimize")
	}
	return sol, nil
}

// Close releases the model's native resources and detaches it from its
// environment. Idempotent.
func (m *ModelHandle) Close() error {
	return m.close(true)
}

func (m *ModelHandle) close(detach bool) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	bm := m.bm
	m.bm = nil
	m.mu.Unlock()

	if detach {
		m.env.detach(m)
	}
	if bm != nil {
		return bm.Close()
	}
	return nil
}
