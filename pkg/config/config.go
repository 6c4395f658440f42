package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the root solvenv configuration.
type Config struct {
	// Backend selects and configures the solver backend.
	Backend BackendConfig `yaml:"backend" validate:"required"`

	// Solver configures the adapter defaults.
	Solver SolverConfig `yaml:"solver"`

	// Store configures run persistence. An empty path disables it.
	Store StoreConfig `yaml:"store"`

	// Telemetry configures logging, metrics, and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// BackendConfig selects the solver backend.
type BackendConfig struct {
	// Name is the backend identifier.
	Name string `yaml:"name" validate:"required,oneof=dense"`

	// Seats is the backend's license pool capacity. Zero means one seat.
	Seats int `yaml:"seats" validate:"gte=0"`

	// LicensePath points at the license file the backend's static
	// availability check verifies. Empty skips the check.
	LicensePath string `yaml:"license_path"`
}

// SolverConfig configures adapter construction.
type SolverConfig struct {
	// ManageEnv makes each adapter own a dedicated environment.
	ManageEnv bool `yaml:"manage_env"`

	// Options are default solver options, routed to the environment or
	// model by the classification registry.
	Options map[string]interface{} `yaml:"options"`
}

// StoreConfig configures run persistence.
type StoreConfig struct {
	// Path is the SQLite database path.
	Path string `yaml:"path"`
}

// TelemetryConfig configures observability.
type TelemetryConfig struct {
	LogLevel       string  `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error fatal"`
	LogFormat      string  `yaml:"log_format" validate:"omitempty,oneof=console json"`
	MetricsEnabled bool    `yaml:"metrics_enabled"`
	MetricsAddr    string  `yaml:"metrics_addr"`
	TracingEnabled bool    `yaml:"tracing_enabled"`
	TraceExporter  string  `yaml:"trace_exporter" validate:"omitempty,oneof=otlp stdout none"`
	TraceEndpoint  string  `yaml:"trace_endpoint"`
	SamplingRate   float64 `yaml:"sampling_rate" validate:"gte=0,lte=1"`
}

// Default returns the built-in configuration: dense backend with a
// single-seat pool, managed environments, no persistence.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{Name: "dense", Seats: 1},
		Solver:  SolverConfig{ManageEnv: true},
		Telemetry: TelemetryConfig{
			LogLevel:     "info",
			LogFormat:    "console",
			MetricsAddr:  ":9090",
			SamplingRate: 1.0,
		},
	}
}

// Load reads and validates a YAML config file. Fields absent from the
// file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
