// internal/benchmark/types.go
package benchmark

import "github.com/mwiater/adapterbench/internal/session"

// Status is the terminal state of one adapter's benchmark.
type Status = session.Status

const (
	StatusSuccess    = session.StatusSuccess
	StatusInitFailed = session.StatusInitFailed
	StatusError      = session.StatusError
)

// TrialSample is the wall-clock duration of one timed workload iteration.
type TrialSample struct {
	RunIndex   int     `json:"runIndex" yaml:"runIndex"`
	DurationMs float64 `json:"durationMs" yaml:"durationMs"`
}

// Timing holds summary statistics and the ordered samples for one adapter.
type Timing struct {
	AvgMs    float64       `json:"avgMs" yaml:"avgMs"`
	MinMs    float64       `json:"minMs" yaml:"minMs"`
	MaxMs    float64       `json:"maxMs" yaml:"maxMs"`
	StdDevMs float64       `json:"stdDevMs" yaml:"stdDevMs"`
	Samples  []TrialSample `json:"samples" yaml:"samples"`
}

// AdapterResult is the outcome of benchmarking one adapter. Optional fields
// are nil when they do not apply to the status.
type AdapterResult struct {
	Adapter          int      `json:"adapter" yaml:"adapter"`
	Name             string   `json:"name" yaml:"name"`
	Backend          string   `json:"backend" yaml:"backend"`
	Status           Status   `json:"status" yaml:"status"`
	Timing           *Timing  `json:"timing,omitempty" yaml:"timing,omitempty"`
	ThroughputGFLOPS *float64 `json:"throughputGFLOPS,omitempty" yaml:"throughputGFLOPS,omitempty"`
	TotalOperations  *int64   `json:"totalOperations,omitempty" yaml:"totalOperations,omitempty"`
	Flagged          bool     `json:"flagged,omitempty" yaml:"flagged,omitempty"`
	FlagReason       string   `json:"flagReason,omitempty" yaml:"flagReason,omitempty"`
	ErrorMessage     string   `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
}

// Throughput returns the measured GFLOPS, if one was computed.
func (r AdapterResult) Throughput() (float64, bool) {
	if r.ThroughputGFLOPS == nil {
		return 0, false
	}
	return *r.ThroughputGFLOPS, true
}

// Succeeded reports whether the adapter completed every trial.
func (r AdapterResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// ReportConfig records the run-wide parameters in the persisted report.
type ReportConfig struct {
	MatrixSize        int      `json:"matrixSize" yaml:"matrixSize"`
	WarmupCount       int      `json:"warmupCount" yaml:"warmupCount"`
	TrialCount        int      `json:"trialCount" yaml:"trialCount"`
	Backend           string   `json:"backend" yaml:"backend"`
	OperationSequence []string `json:"operationSequence" yaml:"operationSequence"`
	Description       string   `json:"description" yaml:"description"`
}

// Report is the persisted record of one benchmark pass.
type Report struct {
	Timestamp string          `json:"timestamp" yaml:"timestamp"`
	RunID     string          `json:"runId" yaml:"runId"`
	Config    ReportConfig    `json:"config" yaml:"config"`
	Results   []AdapterResult `json:"results" yaml:"results"`
}
