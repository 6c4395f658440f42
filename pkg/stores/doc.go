// Package stores provides the persistence layer for solvenv. It records
// solve runs and parameter sweeps in SQLite with WAL mode, connection
// pooling, and embedded migrations.
package stores
