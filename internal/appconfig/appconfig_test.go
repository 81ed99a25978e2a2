// internal/appconfig/appconfig_test.go
package appconfig

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.MatrixSize != 1024 || cfg.WarmupRuns != 3 || cfg.TrialRuns != 10 {
		t.Fatalf("unexpected benchmark defaults: %+v", cfg)
	}
	if cfg.Output != "gpu_performance_results.json" {
		t.Fatalf("unexpected default output %q", cfg.Output)
	}
	if cfg.LogFilePath() != "adapterbench.log" || cfg.BackendName() != "cpu" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if got := Defaults()["matrixSize"]; got != 1024 {
		t.Fatalf("Defaults()[matrixSize] = %v", got)
	}
}

// TestValidate checks that every value the benchmark cannot run with is
// rejected with ErrInvalidConfig.
func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero matrix":     func(c *Config) { c.MatrixSize = 0 },
		"negative warmup": func(c *Config) { c.WarmupRuns = -1 },
		"no trials":       func(c *Config) { c.TrialRuns = 0 },
		"unknown format":  func(c *Config) { c.Format = "xml" },
		"empty output":    func(c *Config) { c.Output = " " },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}

	cfg := Default()
	cfg.Format = "YAML"
	cfg.WarmupRuns = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("yaml with no warmup should validate: %v", err)
	}
}

func TestOptions(t *testing.T) {
	cfg := Config{MatrixSize: 64, WarmupRuns: 1, TrialRuns: 2}
	opts := cfg.Options()
	if opts.MatrixSize != 64 || opts.WarmupRuns != 1 || opts.TrialRuns != 2 {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestShowConfig(t *testing.T) {
	var buf bytes.Buffer
	ShowConfig(&buf, "", nil, false)
	out := buf.String()
	if !strings.Contains(out, "No config file loaded") || !strings.Contains(out, "1024x1024") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "MatrixSize:") {
		t.Fatalf("structured dump should only appear in debug mode:\n%s", out)
	}

	buf.Reset()
	cfg := Default()
	cfg.MetricsFile = "bench.prom"
	cfg.Seed = 42
	ShowConfig(&buf, "bench.yaml", &cfg, true)
	out = buf.String()
	for _, want := range []string{"Config file: bench.yaml", "Metrics File: bench.prom", "Seed:         42", "MatrixSize:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}
