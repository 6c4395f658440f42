// Package telemetry provides observability for solvenv: structured
// logging with zerolog, Prometheus metrics, and OpenTelemetry tracing.
//
// Initialize at startup and shut down gracefully to flush pending spans:
//
//	tel, err := telemetry.New(telemetry.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
// Component loggers carry solver context:
//
//	logger := tel.Logger.NewComponentLogger("adapter")
//	logger.WithField("env_id", id).Info("environment started")
//
// Key metrics exposed at /metrics:
//
//   - solvenv_env_acquisitions_total{outcome}
//   - solvenv_env_releases_total
//   - solvenv_live_models{backend}
//   - solvenv_solves_total{status}
//   - solvenv_solve_duration_seconds{status}
//   - solvenv_probes_total{result}
package telemetry
