// Package dense is the in-process reference backend for solvenv. It
// solves linear programs with a dense two-phase simplex and enforces a
// seat-limited license pool, so environment contention behaves the same
// way it does against an external licensed solver: acquiring a seat when
// the pool is exhausted fails with a retryable busy error, and releasing
// a seat makes the very next acquisition succeed.
//
// The default pool holds a single seat, which models a single-use
// license.
package dense
