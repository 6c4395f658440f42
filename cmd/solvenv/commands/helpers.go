package commands

import (
	"context"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/solvenv/solvenv/pkg/backend/dense"
	"github.com/solvenv/solvenv/pkg/config"
	"github.com/solvenv/solvenv/pkg/solver"
	"github.com/solvenv/solvenv/pkg/stores"
	"github.com/solvenv/solvenv/pkg/telemetry"
)

// loadConfig reads the --config file, or falls back to defaults.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// newTelemetry assembles telemetry from config and the global flags.
func newTelemetry(cfg *config.Config) (*telemetry.Telemetry, error) {
	tcfg := telemetry.DefaultConfig()
	tcfg.Logging.Level = cfg.Telemetry.LogLevel
	if verbose {
		tcfg.Logging.Level = "debug"
	}
	if cfg.Telemetry.LogFormat != "" {
		tcfg.Logging.Format = cfg.Telemetry.LogFormat
	}
	tcfg.Metrics.Enabled = cfg.Telemetry.MetricsEnabled
	if cfg.Telemetry.MetricsAddr != "" {
		tcfg.Metrics.ListenAddress = cfg.Telemetry.MetricsAddr
	}
	tcfg.Tracing.Enabled = cfg.Telemetry.TracingEnabled
	if cfg.Telemetry.TraceExporter != "" {
		tcfg.Tracing.Exporter = cfg.Telemetry.TraceExporter
	}
	tcfg.Tracing.Endpoint = cfg.Telemetry.TraceEndpoint
	if cfg.Telemetry.SamplingRate > 0 {
		tcfg.Tracing.SamplingRate = cfg.Telemetry.SamplingRate
	}
	return telemetry.New(tcfg)
}

// newBackend constructs the configured solver backend.
func newBackend(cfg *config.Config) (solver.Backend, error) {
	switch cfg.Backend.Name {
	case "dense":
		return dense.New(dense.Config{
			Seats:       cfg.Backend.Seats,
			LicensePath: cfg.Backend.LicensePath,
		}), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend.Name)
	}
}

// openStore opens the run store when configured, or returns nil.
func openStore(ctx context.Context, cfg *config.Config) (*stores.SQLiteStore, error) {
	if cfg.Store.Path == "" {
		return nil, nil
	}
	store, err := stores.NewSQLiteStore(stores.Config{Path: cfg.Store.Path})
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// problemDoc is the on-disk YAML form of a problem.
type problemDoc struct {
	Name      string    `yaml:"name"`
	Maximize  bool      `yaml:"maximize"`
	Offset    float64   `yaml:"offset"`
	Objective []float64 `yaml:"objective"`
	ColLower  []float64 `yaml:"col_lower"`
	ColUpper  []float64 `yaml:"col_upper"`
	Rows      []rowDoc  `yaml:"rows"`
}

// rowDoc is one constraint. Eq sets both bounds; absent bounds are
// unbounded on that side.
type rowDoc struct {
	Coeffs []float64 `yaml:"coeffs"`
	Lower  *float64  `yaml:"lower"`
	Upper  *float64  `yaml:"upper"`
	Eq     *float64  `yaml:"eq"`
}

// loadProblem reads a problem YAML file.
func loadProblem(path string) (*solver.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem: %w", err)
	}
	var doc problemDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse problem: %w", err)
	}

	p := &solver.Problem{
		Name:      doc.Name,
		Maximize:  doc.Maximize,
		Offset:    doc.Offset,
		Objective: doc.Objective,
		ColLower:  doc.ColLower,
		ColUpper:  doc.ColUpper,
	}
	if p.Name == "" {
		p.Name = path
	}
	for i, row := range doc.Rows {
		if len(row.Coeffs) == 0 {
			return nil, fmt.Errorf("row %d has no coefficients", i)
		}
		switch {
		case row.Eq != nil:
			p.AddEqRow(row.Coeffs, *row.Eq)
		default:
			lower := math.Inf(-1)
			upper := math.Inf(1)
			if row.Lower != nil {
				lower = *row.Lower
			}
			if row.Upper != nil {
				upper = *row.Upper
			}
			p.AddRow(lower, row.Coeffs, upper)
		}
	}
	return p, nil
}
