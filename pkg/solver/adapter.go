package solver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/solvenv/solvenv/pkg/telemetry"
)

// Config configures a solver adapter.
type Config struct {
	// ManageEnv makes the adapter create and own a dedicated environment,
	// released on Close. When false the adapter solves against the shared
	// environment supplied in Env and never releases it.
	ManageEnv bool

	// Options are constructor-time solver options, each routed to the
	// environment or the model by the classification registry. Per-solve
	// overrides win on conflict.
	Options map[string]interface{}

	// Env is the shared environment to use when ManageEnv is false.
	Env *Environment

	// Probe caches positive availability results across solves. A fresh
	// cache is created when nil.
	Probe *ProbeCache

	// Logger receives solve lifecycle events. Nil discards them.
	Logger *telemetry.Logger

	// Metrics receives solve metrics. Nil disables them.
	Metrics *telemetry.Metrics
}

// Adapter binds one managed environment to a sequence of solve calls. At
// most one model handle is live per adapter: each Solve closes the
// previous model before creating the next. Adapters are safe for use from
// a single goroutine at a time; solves are blocking and sequential.
type Adapter struct {
	mu      sync.Mutex
	backend Backend

	manageEnv bool
	options   map[string]interface{}
	env       *Environment
	model     *ModelHandle
	probe     *ProbeCache
	closed    bool

	log     *telemetry.Logger
	metrics *telemetry.Metrics
}

// New creates an adapter over the given backend. With ManageEnv a
// dedicated environment is created lazily on first solve; otherwise
// cfg.Env must carry the shared environment to solve against.
func New(backend Backend, cfg Config) (*Adapter, error) {
	if !cfg.ManageEnv && cfg.Env == nil {
		return nil, NewInvalidStateError("shared environment required when the adapter does not manage one", nil).WithOp("new")
	}
	if cfg.ManageEnv && cfg.Env != nil {
		return nil, NewInvalidStateError("cannot supply a shared environment to a managing adapter", nil).WithOp("new")
	}
	log := cfg.Logger
	if log == nil {
		log = telemetry.Discard()
	}
	probe := cfg.Probe
	if probe == nil {
		probe = NewProbeCache()
	}
	options := make(map[string]interface{}, len(cfg.Options))
	for name, value := range cfg.Options {
		options[name] = value
	}
	return &Adapter{
		backend:   backend,
		manageEnv: cfg.ManageEnv,
		options:   options,
		env:       cfg.Env,
		probe:     probe,
		log:       log.WithField("backend", backend.Name()),
		metrics:   cfg.Metrics,
	}, nil
}

// Solve optimizes the problem. Constructor-time options are merged with
// the overrides (overrides win), each merged option is routed exactly once
// to the environment or the model, and a fresh model handle replaces the
// previous one. Contention starting the environment surfaces as a
// retryable unavailable error; other backend failures surface as solve
// errors.
func (a *Adapter) Solve(ctx context.Context, p *Problem, overrides map[string]interface{}) (*Solution, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, NewInvalidStateError("adapter is closed", nil).WithOp("solve")
	}

	// Static availability runs on every solve until one succeeds; a failed
	// check is never remembered.
	if !a.probe.KnownAvailable() {
		if err := a.backend.CheckAvailable(ctx); err != nil {
			a.metrics.RecordProbe("unavailable")
			return nil, NewUnavailableError("backend unavailable", err).WithOp("solve")
		}
	}

	merged := mergeOptions(a.options, overrides)

	if a.env == nil {
		a.env = NewEnvironment(a.backend, EnvConfig{Logger: a.log, Metrics: a.metrics})
	}

	var modelParams []Param
	for _, param := range merged {
		switch Classify(param.Name) {
		case ScopeEnvironment:
			if err := a.env.Configure(param.Name, param.Value); err != nil {
				return nil, err
			}
		default:
			modelParams = append(modelParams, param)
		}
	}

	// The previous solve's model is released before its replacement is
	// created, so at most one model holds backend resources at a time.
	if a.model != nil {
		if err := a.model.Close(); err != nil {
			a.log.WithError(err).Warn("closing previous model")
		}
		a.model = nil
	}

	if err := a.env.Start(ctx); err != nil {
		return nil, err
	}
	a.probe.MarkAvailable()

	model, err := a.env.NewModel(ctx)
	if err != nil {
		return nil, err
	}
	for _, param := range modelParams {
		if err := model.SetParam(param.Name, param.Value); err != nil {
			_ = model.Close()
			return nil, err
		}
	}
	a.model = model

	started := time.Now()
	sol, err := model.Optimize(ctx, p)
	elapsed := time.Since(started)
	if err != nil {
		a.metrics.RecordSolve("error", elapsed)
		return nil, err
	}
	a.metrics.RecordSolve(string(sol.Status), elapsed)
	a.log.WithField("problem", p.Name).
		WithField("status", string(sol.Status)).
		WithField("duration", elapsed.String()).
		Info("solve finished")
	return sol, nil
}

// Environment returns the environment the adapter solves against. Nil for
// a managing adapter before its first solve.
func (a *Adapter) Environment() *Environment {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.env
}

// Close releases the current model and, for a managing adapter, the owned
// environment. Idempotent; a shared environment is never released here.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	var errs []error
	if a.model != nil {
		if err := a.model.Close(); err != nil {
			errs = append(errs, err)
		}
		a.model = nil
	}
	if a.manageEnv && a.env != nil {
		if err := a.env.Close(); err != nil {
			errs = append(errs, err)
		}
		a.env = nil
	}
	return errors.Join(errs...)
}

// Do runs fn with a freshly constructed adapter and closes it on every
// exit path, including panics. The scoped form is the primary API;
// explicit Close remains as an idempotent convenience.
func Do(ctx context.Context, backend Backend, cfg Config, fn func(context.Context, *Adapter) error) (err error) {
	a, err := New(backend, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, a)
}
