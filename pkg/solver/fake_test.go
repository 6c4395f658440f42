package solver

import (
	"context"
	"fmt"
	"sync"
)

// fakeBackend is a parameter-recording backend with a seat-limited
// license, shared by the tests in this package.
type fakeBackend struct {
	mu        sync.Mutex
	seats     int
	inUse     int
	staticErr error

	envsCreated   int
	modelsCreated int
	modelsClosed  int
	liveModels    int
}

func newFakeBackend(seats int) *fakeBackend {
	return &fakeBackend{seats: seats}
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) CheckAvailable(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.staticErr
}

func (b *fakeBackend) NewEnv(context.Context) (BackendEnv, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.envsCreated++
	return &fakeEnv{backend: b, params: make(map[string]interface{})}, nil
}

func (b *fakeBackend) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inUse >= b.seats {
		return fmt.Errorf("%w: no seats left", ErrLicenseBusy)
	}
	b.inUse++
	return nil
}

func (b *fakeBackend) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inUse == 0 {
		panic("fake backend: seat released twice")
	}
	b.inUse--
}

func (b *fakeBackend) seatsInUse() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inUse
}

type fakeEnv struct {
	mu      sync.Mutex
	backend *fakeBackend
	params  map[string]interface{}
	started bool
	closed  bool
	closes  int
}

func (e *fakeEnv) SetParam(name string, value interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return fmt.Errorf("parameter %q set after start", name)
	}
	e.params[name] = value
	return nil
}

func (e *fakeEnv) Start(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if server, ok := e.params["ComputeServer"]; ok {
		return fmt.Errorf("could not resolve host %v", server)
	}
	if err := e.backend.acquire(); err != nil {
		return err
	}
	e.started = true
	return nil
}

func (e *fakeEnv) NewModel(context.Context) (BackendModel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return nil, fmt.Errorf("environment not started")
	}
	e.backend.mu.Lock()
	e.backend.modelsCreated++
	e.backend.liveModels++
	e.backend.mu.Unlock()
	return &fakeModel{backend: e.backend, params: make(map[string]interface{})}, nil
}

func (e *fakeEnv) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closes++
	if e.closed {
		return nil
	}
	e.closed = true
	if e.started {
		e.started = false
		e.backend.release()
	}
	return nil
}

type fakeModel struct {
	mu      sync.Mutex
	backend *fakeBackend
	params  map[string]interface{}
	closed  bool
	solves  int
}

func (m *fakeModel) SetParam(name string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params[name] = value
	return nil
}

func (m *fakeModel) Optimize(_ context.Context, p *Problem) (*Solution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, fmt.Errorf("model closed")
	}
	m.solves++
	return &Solution{Status: StatusOptimal, Objective: 42}, nil
}

func (m *fakeModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.backend.mu.Lock()
	m.backend.modelsClosed++
	m.backend.liveModels--
	m.backend.mu.Unlock()
	return nil
}

func (m *fakeModel) recordedParams() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]interface{}, len(m.params))
	for k, v := range m.params {
		out[k] = v
	}
	return out
}

func (e *fakeEnv) recordedParams() map[string]interface{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]interface{}, len(e.params))
	for k, v := range e.params {
		out[k] = v
	}
	return out
}
