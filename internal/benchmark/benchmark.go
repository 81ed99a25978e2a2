// internal/benchmark/benchmark.go
package benchmark

import (
	"errors"
	"fmt"
	"time"

	"github.com/mwiater/adapterbench/internal/compute"
	"github.com/mwiater/adapterbench/internal/logging"
	"github.com/mwiater/adapterbench/internal/metrics"
	"github.com/mwiater/adapterbench/internal/session"
)

const (
	// DefaultMatrixSize is the side length of the square test matrices.
	DefaultMatrixSize = 1024
	// DefaultWarmupRuns is the number of untimed workload iterations per adapter.
	DefaultWarmupRuns = 3
	// DefaultTrialRuns is the number of timed workload iterations per adapter.
	DefaultTrialRuns = 10
	// Description labels the workload in persisted reports.
	Description = "Intensive combined GPU operations"
)

// OperationSequence names the steps of the composite workload in issue order.
var OperationSequence = []string{
	"matmul(A,B)",
	"matmul(B,C)",
	"add(r1,r2)",
	"multiply(r3,A)",
	"matmul(r4,B)",
}

// ErrInvalidOptions is returned for options that cannot drive a benchmark.
var ErrInvalidOptions = errors.New("invalid benchmark options")

// Options are fixed for a whole run; every adapter is measured the same way.
type Options struct {
	MatrixSize int
	WarmupRuns int
	TrialRuns  int
}

// DefaultOptions returns the standard 1024×1024, 3 warmup, 10 trial setup.
func DefaultOptions() Options {
	return Options{
		MatrixSize: DefaultMatrixSize,
		WarmupRuns: DefaultWarmupRuns,
		TrialRuns:  DefaultTrialRuns,
	}
}

// Validate rejects options that would produce no measurement.
func (o Options) Validate() error {
	switch {
	case o.MatrixSize <= 0:
		return fmt.Errorf("%w: matrix size must be positive, got %d", ErrInvalidOptions, o.MatrixSize)
	case o.WarmupRuns < 0:
		return fmt.Errorf("%w: warmup runs must not be negative, got %d", ErrInvalidOptions, o.WarmupRuns)
	case o.TrialRuns < 1:
		return fmt.Errorf("%w: trial runs must be at least 1, got %d", ErrInvalidOptions, o.TrialRuns)
	}
	return nil
}

// Engine drives the composite workload on every adapter of a backend.
type Engine struct {
	backend compute.Backend
	opts    Options
	now     func() time.Time
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithClock replaces the wall clock used to time trials.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine returns an engine for backend.
func NewEngine(backend compute.Backend, opts Options, engineOpts ...EngineOption) *Engine {
	e := &Engine{backend: backend, opts: opts, now: time.Now}
	for _, opt := range engineOpts {
		opt(e)
	}
	return e
}

// Options returns the run-wide options.
func (e *Engine) Options() Options {
	return e.opts
}

// Run benchmarks every adapter, strictly one after another, and returns one
// result per adapter in index order. compute.ErrNoAdapters is returned as is.
func (e *Engine) Run() ([]AdapterResult, error) {
	if err := e.opts.Validate(); err != nil {
		return nil, err
	}
	adapters, err := compute.ListAdapters(e.backend)
	if err != nil {
		return nil, err
	}

	logging.LogEvent("Available adapters:")
	for _, adapter := range adapters {
		logging.LogEvent("  %s", adapter)
	}
	logging.LogEvent("Test matrix size: %dx%d (%.1fM elements)", e.opts.MatrixSize, e.opts.MatrixSize, float64(e.opts.MatrixSize*e.opts.MatrixSize)/1e6)

	results := make([]AdapterResult, 0, len(adapters))
	for _, adapter := range adapters {
		results = append(results, e.RunAdapter(adapter))
	}
	return results, nil
}

// RunAdapter benchmarks a single adapter. It never returns an error: every
// failure is folded into the result.
func (e *Engine) RunAdapter(adapter compute.Adapter) AdapterResult {
	logging.LogEvent("--- Adapter %d: %s ---", adapter.Index, adapter.Name)

	out := session.WithContext(e.backend, adapter, e.measure)
	result := AdapterResult{
		Adapter: adapter.Index,
		Name:    adapter.Name,
		Backend: adapter.Backend,
		Status:  out.Status,
	}
	logging.Debugf("adapter %d tensors acquired=%d released=%d", adapter.Index, out.Counts.Acquired, out.Counts.Released)

	switch out.Status {
	case StatusInitFailed:
		logging.LogEvent("%s Adapter %d initialization failed", failedLabel("FAILED:"), adapter.Index)
		return result
	case StatusError:
		result.ErrorMessage = out.Err.Error()
		logging.LogEvent("%s Error with adapter %d: %s", failedLabel("ERROR:"), adapter.Index, result.ErrorMessage)
		logging.LogAdapter("error", adapter.Index, adapter.Name, adapter.Backend, result.ErrorMessage)
		return result
	}

	return e.summarize(result, out.Value)
}

// measure runs inside the adapter's context: allocate, warm up, then time.
// Any error discards the samples gathered so far.
func (e *Engine) measure(s *session.Session) ([]TrialSample, error) {
	logging.LogEvent("%s Context initialized: %s", successLabel("SUCCESS:"), s.Key())

	m, err := allocate(s, e.opts.MatrixSize)
	if err != nil {
		return nil, fmt.Errorf("allocate test matrices: %w", err)
	}

	logging.LogEvent("Warmup runs...")
	for i := 0; i < e.opts.WarmupRuns; i++ {
		if _, err := e.trial(s, m); err != nil {
			return nil, fmt.Errorf("warmup %d: %w", i+1, err)
		}
	}

	logging.LogEvent("Intensive performance measurement (%d runs + combined operations)...", e.opts.TrialRuns)
	samples := make([]TrialSample, 0, e.opts.TrialRuns)
	for run := 1; run <= e.opts.TrialRuns; run++ {
		elapsed, err := e.trial(s, m)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", run, err)
		}
		sample := TrialSample{RunIndex: run, DurationMs: milliseconds(elapsed)}
		samples = append(samples, sample)
		logging.LogEvent("  Run %d: %.2fms", run, sample.DurationMs)
	}
	return samples, nil
}

// trial issues one composite workload. The clock brackets the work from the
// first operation to the synchronized final result; the iteration's tensors
// are released only after the clock has stopped.
func (e *Engine) trial(s *session.Session, m matrices) (elapsed time.Duration, err error) {
	scope := s.NewScope()
	defer func() {
		if cerr := scope.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("release iteration tensors: %w", cerr)
		}
	}()

	start := e.now()
	if err := workload(scope, m); err != nil {
		return 0, err
	}
	if err := s.Synchronize(); err != nil {
		return 0, err
	}
	return e.now().Sub(start), nil
}

func (e *Engine) summarize(result AdapterResult, samples []TrialSample) AdapterResult {
	durations := make([]float64, len(samples))
	for i, sample := range samples {
		durations[i] = sample.DurationMs
	}
	summary := metrics.Summarize(durations)
	ops := metrics.TotalOperations(e.opts.MatrixSize)

	result.Timing = &Timing{
		AvgMs:    summary.AvgMs,
		MinMs:    summary.MinMs,
		MaxMs:    summary.MaxMs,
		StdDevMs: summary.StdDevMs,
		Samples:  samples,
	}
	result.TotalOperations = &ops

	logging.LogEvent("%s Average time: %.2fms (min: %.2fms, max: %.2fms)", infoLabel("STATS:"), summary.AvgMs, summary.MinMs, summary.MaxMs)
	if reason := metrics.Degenerate(durations, summary); reason != "" {
		result.Flagged = true
		result.FlagReason = reason
		logging.LogEvent("%s Adapter %d timing is unreliable: %s", failedLabel("FLAGGED:"), result.Adapter, reason)
	}
	if gflops, ok := metrics.ThroughputGFLOPS(ops, summary.AvgMs); ok {
		result.ThroughputGFLOPS = &gflops
		logging.LogEvent("%s Throughput: %.2f GFLOPS", infoLabel("PERF:"), gflops)
	} else {
		logging.LogEvent("%s Throughput undefined for adapter %d", failedLabel("FLAGGED:"), result.Adapter)
	}
	logging.LogEvent("%s Combined operations: 3x matmul + add + multiply = %.2fB ops", infoLabel("OPS:"), float64(ops)/1e9)
	return result
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
