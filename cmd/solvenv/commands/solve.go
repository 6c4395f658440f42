package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/solvenv/solvenv/pkg/solver"
	"github.com/solvenv/solvenv/pkg/stores"
	"github.com/solvenv/solvenv/pkg/telemetry"
)

func newSolveCommand() *cobra.Command {
	var options map[string]string

	cmd := &cobra.Command{
		Use:   "solve <problem.yaml>",
		Short: "Solve a problem file",
		Long: `Solve a linear program described in a YAML problem file.

Options from the config file are merged with --option overrides
(overrides win) and routed to the environment or the model by the
classification registry. The environment is acquired for this call and
released on exit, whatever the outcome.`,
		Example: `  # Solve with defaults
  solvenv solve diet.yaml

  # Override a model option for this call
  solvenv solve diet.yaml --option IterationLimit=500`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tel, err := newTelemetry(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = tel.Shutdown(context.Background()) }()
			if err := tel.Metrics.StartMetricsServer(); err != nil {
				return err
			}

			backend, err := newBackend(cfg)
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer func() { _ = store.Close() }()
			}

			problem, err := loadProblem(args[0])
			if err != nil {
				return err
			}
			overrides := make(map[string]interface{}, len(options))
			for name, value := range options {
				overrides[name] = parseOptionValue(value)
			}

			return solver.Do(cmd.Context(), backend, solver.Config{
				ManageEnv: cfg.Solver.ManageEnv,
				Options:   cfg.Solver.Options,
				Logger:    tel.Logger.NewComponentLogger("solve"),
				Metrics:   tel.Metrics,
			}, func(ctx context.Context, a *solver.Adapter) error {
				sol, err := recordedSolve(ctx, a, store, tel, backend.Name(), problem, overrides, nil)
				if err != nil {
					return err
				}
				return printSolution(problem, sol)
			})
		},
	}

	cmd.Flags().StringToStringVar(&options, "option", nil, "solver option override (name=value, repeatable)")
	return cmd
}

// recordedSolve runs one solve through the adapter, tracing it and
// persisting the outcome when a store is configured.
func recordedSolve(ctx context.Context, a *solver.Adapter, store *stores.SQLiteStore, tel *telemetry.Telemetry, backendName string, problem *solver.Problem, overrides map[string]interface{}, sweepID *string) (*solver.Solution, error) {
	ctx, span := tel.Tracer.StartSolveSpan(ctx, backendName, problem.Name)
	defer span.End()

	run := &stores.Run{
		ID:        uuid.NewString(),
		Backend:   backendName,
		Problem:   problem.Name,
		SweepID:   sweepID,
		Status:    stores.RunStatusRunning,
		StartedAt: time.Now(),
		CreatedAt: time.Now(),
	}
	if store != nil {
		if err := store.CreateRun(ctx, run); err != nil {
			return nil, err
		}
	}

	sol, err := a.Solve(ctx, problem, overrides)
	if err != nil {
		telemetry.RecordError(span, err)
		if store != nil {
			msg := err.Error()
			_ = store.CompleteRun(ctx, run.ID, stores.RunStatusFailed, nil, 0, time.Since(run.StartedAt), &msg)
		}
		return nil, err
	}
	telemetry.RecordSuccess(span)
	if store != nil {
		objective := sol.Objective
		if err := store.CompleteRun(ctx, run.ID, runStatus(sol.Status), &objective, sol.Iterations, time.Since(run.StartedAt), nil); err != nil {
			return nil, err
		}
	}
	return sol, nil
}

// runStatus maps a solution status onto the store's run status.
func runStatus(status solver.Status) stores.RunStatus {
	switch status {
	case solver.StatusOptimal:
		return stores.RunStatusOptimal
	case solver.StatusInfeasible:
		return stores.RunStatusInfeasible
	case solver.StatusUnbounded:
		return stores.RunStatusUnbounded
	default:
		return stores.RunStatusLimit
	}
}

// parseOptionValue converts a flag value to the richest type it parses
// as, so "2" routes as an int and "0.5" as a float.
func parseOptionValue(raw string) interface{} {
	var i int
	if _, err := fmt.Sscanf(raw, "%d", &i); err == nil && fmt.Sprint(i) == raw {
		return i
	}
	var f float64
	if _, err := fmt.Sscanf(raw, "%g", &f); err == nil {
		return f
	}
	return raw
}

// printSolution writes the solution to stdout.
func printSolution(problem *solver.Problem, sol *solver.Solution) error {
	if jsonOutput {
		out, err := json.MarshalIndent(sol, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Printf("%s: %s", problem.Name, sol.Status)
	if sol.Status == solver.StatusOptimal {
		fmt.Printf(", objective %g", sol.Objective)
	}
	fmt.Println()
	for i, v := range sol.Columns {
		fmt.Printf("  x%d = %g\n", i, v)
	}
	return nil
}
