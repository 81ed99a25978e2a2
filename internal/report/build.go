package report

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/mwiater/adapterbench/internal/benchmark"
)

// TimestampLayout is ISO-8601 with millisecond precision; UTC renders as "Z".
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// NewRunID returns a fresh identifier for one benchmark pass.
func NewRunID() string {
	return uuid.NewString()
}

// ConfigFor records the run-wide parameters of a benchmark pass.
func ConfigFor(opts benchmark.Options, backend string) benchmark.ReportConfig {
	return benchmark.ReportConfig{
		MatrixSize:        opts.MatrixSize,
		WarmupCount:       opts.WarmupRuns,
		TrialCount:        opts.TrialRuns,
		Backend:           backend,
		OperationSequence: slices.Clone(benchmark.OperationSequence),
		Description:       benchmark.Description,
	}
}

// Build assembles the persisted report. Results keep their run order.
func Build(cfg benchmark.ReportConfig, results []benchmark.AdapterResult, now time.Time, runID string) benchmark.Report {
	if len(cfg.OperationSequence) == 0 {
		cfg.OperationSequence = slices.Clone(benchmark.OperationSequence)
	}
	if cfg.Description == "" {
		cfg.Description = benchmark.Description
	}
	if runID == "" {
		runID = NewRunID()
	}
	out := slices.Clone(results)
	if out == nil {
		out = []benchmark.AdapterResult{}
	}
	return benchmark.Report{
		Timestamp: now.UTC().Format(TimestampLayout),
		RunID:     runID,
		Config:    cfg,
		Results:   out,
	}
}
