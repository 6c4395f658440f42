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
)

func newSweepCommand() *cobra.Command {
	var (
		row    int
		values []float64
	)

	cmd := &cobra.Command{
		Use:   "sweep <problem.yaml>",
		Short: "Sweep a constraint bound over a grid of values",
		Long: `Solve the problem once per grid value, setting the chosen
constraint's upper bound to each value in turn.

All points run sequentially through one adapter, so a single licensed
environment serves the whole sweep and each point's model replaces the
previous one.`,
		Example: `  # Sweep the capacity constraint from 10 to 50
  solvenv sweep plant.yaml --row 0 --values 10,20,30,40,50`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(values) == 0 {
				return fmt.Errorf("at least one sweep value is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tel, err := newTelemetry(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = tel.Shutdown(context.Background()) }()

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
			if row < 0 || row >= problem.NumRows() {
				return fmt.Errorf("row %d out of range (problem has %d rows)", row, problem.NumRows())
			}

			sweepID := uuid.NewString()
			if store != nil {
				err := store.CreateSweep(cmd.Context(), &stores.Sweep{
					ID:        sweepID,
					Backend:   backend.Name(),
					Problem:   problem.Name,
					Param:     fmt.Sprintf("row[%d].upper", row),
					Points:    len(values),
					CreatedAt: time.Now(),
				})
				if err != nil {
					return err
				}
			}

			type point struct {
				Value     float64       `json:"value"`
				Status    solver.Status `json:"status"`
				Objective float64       `json:"objective"`
			}
			points := make([]point, 0, len(values))

			err = solver.Do(cmd.Context(), backend, solver.Config{
				ManageEnv: cfg.Solver.ManageEnv,
				Options:   cfg.Solver.Options,
				Logger:    tel.Logger.NewComponentLogger("sweep").WithRunID(sweepID),
				Metrics:   tel.Metrics,
			}, func(ctx context.Context, a *solver.Adapter) error {
				for _, v := range values {
					problem.RowUpper[row] = v
					sol, err := recordedSolve(ctx, a, store, tel, backend.Name(), problem, nil, &sweepID)
					if err != nil {
						return fmt.Errorf("sweep point %g: %w", v, err)
					}
					points = append(points, point{Value: v, Status: sol.Status, Objective: sol.Objective})
				}
				return nil
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				out, err := json.MarshalIndent(points, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}
			fmt.Printf("sweep %s (%d points)\n", sweepID, len(points))
			for _, pt := range points {
				fmt.Printf("  %10g  %-12s  %g\n", pt.Value, pt.Status, pt.Objective)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&row, "row", 0, "constraint row whose upper bound is swept")
	cmd.Flags().Float64SliceVar(&values, "values", nil, "grid values for the swept bound")
	return cmd
}
