package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solvenv/solvenv/pkg/solver"
)

func newProbeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check backend availability",
		Long: `Check whether the configured solver backend is usable right now.

Static conditions (backend present, license file locatable) are checked
first; only when they pass is a live environment opened and immediately
released. The result reflects this moment only: an unavailable backend
may become available as soon as the contending holder releases.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			backend, err := newBackend(cfg)
			if err != nil {
				return err
			}

			result := solver.Probe(cmd.Context(), backend)
			if jsonOutput {
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
			} else if result.Available {
				fmt.Printf("backend %s: available\n", backend.Name())
			} else {
				fmt.Printf("backend %s: unavailable: %s\n", backend.Name(), result.Reason)
			}
			if !result.Available {
				return fmt.Errorf("backend unavailable")
			}
			return nil
		},
	}
	return cmd
}
