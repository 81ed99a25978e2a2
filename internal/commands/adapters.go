package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwiater/adapterbench/internal/compute"
)

// adaptersCmd implements 'adapters', which lists what the backend exposes
// without running anything.
var adaptersCmd = &cobra.Command{
	Use:   "adapters",
	Short: "List the adapters exposed by the configured backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := newBackend(GetConfig())
		if err != nil {
			return fmt.Errorf("create backend: %w", err)
		}
		adapters, err := compute.ListAdapters(backend)
		if errors.Is(err, compute.ErrNoAdapters) {
			fmt.Fprintln(cmd.OutOrStdout(), noAdaptersMessage)
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Available adapters:")
		for _, a := range adapters {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", a)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adaptersCmd)
}
