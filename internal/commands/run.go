package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwiater/adapterbench/internal/backendfactory"
	"github.com/mwiater/adapterbench/internal/benchmark"
	"github.com/mwiater/adapterbench/internal/compute"
	"github.com/mwiater/adapterbench/internal/logging"
	"github.com/mwiater/adapterbench/internal/report"
)

// Seams swapped in tests.
var (
	newBackend = backendfactory.New
	newEngine  = benchmark.NewEngine
	newRunID   = report.NewRunID
	now        = time.Now
)

// noAdaptersMessage is printed when the backend exposes nothing to measure.
const noAdaptersMessage = "no adapters available"

// runCmd implements 'run', an explicit alias for the root command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one benchmark pass over every adapter",
	Long: `Run the composite workload (3x matmul + add + multiply) on every adapter the
backend exposes, print a ranked summary and persist the report.`,
	Args: cobra.NoArgs,
	RunE: runBenchmark,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// runBenchmark drives one full pass: measure, summarize, persist. Per-adapter
// failures are reported in the summary and never fail the command.
func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	backend, err := newBackend(cfg)
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}

	logging.LogEvent("=== adapterbench %s ===", appVersion)
	results, err := newEngine(backend, cfg.Options()).Run()
	if errors.Is(err, compute.ErrNoAdapters) {
		logging.LogEvent("No adapters found; nothing to benchmark")
		fmt.Fprintln(cmd.OutOrStdout(), noAdaptersMessage)
		return nil
	}
	if err != nil {
		return err
	}

	rep := report.Build(report.ConfigFor(cfg.Options(), cfg.BackendName()), results, now(), newRunID())

	fmt.Fprintln(cmd.OutOrStdout())
	if err := report.RenderSummary(cmd.OutOrStdout(), rep); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}

	if err := report.Write(cfg.Output, cfg.Format, rep); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	logging.LogEvent("Results saved to: %s", cfg.Output)

	if cfg.MetricsFile != "" {
		if err := report.WriteTextfile(cfg.MetricsFile, rep); err != nil {
			return err
		}
		logging.LogEvent("Metrics written to: %s", cfg.MetricsFile)
	}
	return nil
}
