package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored solve runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Store.Path == "" {
				return fmt.Errorf("no run store configured (set store.path)")
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.ListRuns(cmd.Context(), limit, 0)
			if err != nil {
				return err
			}
			if jsonOutput {
				out, err := json.MarshalIndent(runs, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}
			for _, run := range runs {
				objective := "-"
				if run.Objective != nil {
					objective = fmt.Sprintf("%g", *run.Objective)
				}
				fmt.Printf("%s  %-10s  %-12s  %8s  %dms\n",
					run.ID, run.Backend, run.Status, objective, run.DurationMS)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	return cmd
}
