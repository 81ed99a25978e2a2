package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwiater/adapterbench/internal/report"
)

// validateCmd implements 'validate', which checks a persisted JSON report
// against the embedded schema.
var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a persisted JSON report against the report schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := report.ValidateFile(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
