package solver

import "context"

// Backend is the interface a solver plugin implements to expose its native
// environment and model lifecycle. Both real backends and test fakes
// implement it; the adapter never reaches past it.
type Backend interface {
	// Name identifies the backend for logs and metrics.
	Name() string

	// CheckAvailable performs static availability checks only: the backend
	// library is usable and a license is locatable. It must not open a live
	// environment and must not have lasting side effects; a failed check is
	// re-run on the next call, never remembered.
	CheckAvailable(ctx context.Context) error

	// NewEnv creates an unstarted native environment. Parameters staged on
	// the returned handle are applied before Start.
	NewEnv(ctx context.Context) (BackendEnv, error)
}

// BackendEnv is a native environment handle. It holds no license until
// Start succeeds.
type BackendEnv interface {
	// SetParam stages an environment-scoped parameter. Only valid before
	// Start.
	SetParam(name string, value interface{}) error

	// Start acquires the licensed resource. When the resource is held by
	// another handle or process, the returned error wraps ErrLicenseBusy.
	Start(ctx context.Context) error

	// NewModel creates a per-solve model bound to this environment.
	NewModel(ctx context.Context) (BackendModel, error)

	// Close releases the environment and its license slot. Callers must not
	// use the handle afterwards.
	Close() error
}

// BackendModel is a native per-solve model handle.
type BackendModel interface {
	// SetParam applies a model-scoped parameter.
	SetParam(name string, value interface{}) error

	// Optimize solves the given problem.
	Optimize(ctx context.Context, p *Problem) (*Solution, error)

	// Close releases the model's native resources.
	Close() error
}
