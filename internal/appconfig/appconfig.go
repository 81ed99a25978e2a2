// internal/appconfig/appconfig.go
// Package appconfig defines the resolved run configuration and its defaults.
package appconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mwiater/adapterbench/internal/benchmark"
)

const (
	// DefaultOutputPath is where the persisted report is written.
	DefaultOutputPath = "gpu_performance_results.json"
	// DefaultLogFile is the append-only log shared with stdout.
	DefaultLogFile = "adapterbench.log"
	// DefaultBackend names the compute backend used when none is configured.
	DefaultBackend = "cpu"
	// DefaultFormat is the persisted report encoding.
	DefaultFormat = "json"
	// EnvPrefix prefixes environment overrides, e.g. ADAPTERBENCH_MATRIXSIZE.
	EnvPrefix = "ADAPTERBENCH"
)

// ErrInvalidConfig is returned by Validate for values that cannot drive a run.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the resolved configuration for one benchmark pass.
type Config struct {
	MatrixSize  int    `json:"matrixSize"`
	WarmupRuns  int    `json:"warmupRuns"`
	TrialRuns   int    `json:"trialRuns"`
	Backend     string `json:"backend"`
	Output      string `json:"output"`
	Format      string `json:"format"`
	MetricsFile string `json:"metricsFile,omitempty"`
	LogFile     string `json:"logFile,omitempty"`
	Debug       bool   `json:"debug"`
	Seed        uint64 `json:"seed,omitempty"`
	ConfigPath  string `json:"-"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	opts := benchmark.DefaultOptions()
	return Config{
		MatrixSize: opts.MatrixSize,
		WarmupRuns: opts.WarmupRuns,
		TrialRuns:  opts.TrialRuns,
		Backend:    DefaultBackend,
		Output:     DefaultOutputPath,
		Format:     DefaultFormat,
		LogFile:    DefaultLogFile,
	}
}

// Defaults returns the default values keyed by configuration name, for
// registration with a config loader.
func Defaults() map[string]any {
	d := Default()
	return map[string]any{
		"matrixSize":  d.MatrixSize,
		"warmupRuns":  d.WarmupRuns,
		"trialRuns":   d.TrialRuns,
		"backend":     d.Backend,
		"output":      d.Output,
		"format":      d.Format,
		"metricsFile": d.MetricsFile,
		"logFile":     d.LogFile,
		"debug":       d.Debug,
		"seed":        d.Seed,
	}
}

// Options returns the benchmark options described by the configuration.
func (c Config) Options() benchmark.Options {
	return benchmark.Options{
		MatrixSize: c.MatrixSize,
		WarmupRuns: c.WarmupRuns,
		TrialRuns:  c.TrialRuns,
	}
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return DefaultLogFile
}

// BackendName returns the normalized backend name.
func (c Config) BackendName() string {
	if b := strings.ToLower(strings.TrimSpace(c.Backend)); b != "" {
		return b
	}
	return DefaultBackend
}

// Validate rejects configurations that cannot produce a meaningful run.
func (c Config) Validate() error {
	if err := c.Options().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case "", "json", "yaml", "yml":
	default:
		return fmt.Errorf("%w: unsupported format %q (want json or yaml)", ErrInvalidConfig, c.Format)
	}
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("%w: output path must not be empty", ErrInvalidConfig)
	}
	return nil
}
