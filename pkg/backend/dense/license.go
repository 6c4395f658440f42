package dense

import (
	"fmt"
	"sync"

	"github.com/solvenv/solvenv/pkg/solver"
)

// LicensePool arbitrates a fixed number of environment seats. It is
// shared by every environment created from one Backend, the way a license
// server is shared by every process on a host.
type LicensePool struct {
	mu    sync.Mutex
	seats int
	inUse int
}

// NewLicensePool creates a pool with the given number of seats. Seats
// below one are clamped to one.
func NewLicensePool(seats int) *LicensePool {
	if seats < 1 {
		seats = 1
	}
	return &LicensePool{seats: seats}
}

// Acquire claims a seat. When every seat is taken the returned error
// wraps solver.ErrLicenseBusy; the failure is momentary and a retry after
// a Release succeeds.
func (p *LicensePool) Acquire() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inUse >= p.seats {
		return fmt.Errorf("%w: all %d seats in use", solver.ErrLicenseBusy, p.seats)
	}
	p.inUse++
	return nil
}

// Release returns a seat to the pool. Releasing more than was acquired is
// a programming error and panics.
func (p *LicensePool) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inUse == 0 {
		panic("dense: license seat released twice")
	}
	p.inUse--
}

// InUse returns the number of seats currently claimed.
func (p *LicensePool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}

// Seats returns the pool capacity.
func (p *LicensePool) Seats() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seats
}
