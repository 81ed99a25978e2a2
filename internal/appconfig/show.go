package appconfig

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp/v3"
)

// ShowConfig prints the current configuration summary. When cfg is nil the
// defaults are shown. debug appends a full structured dump.
func ShowConfig(out io.Writer, file string, cfg *Config, debug bool) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	c := Default()
	if cfg != nil {
		c = *cfg
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Matrix Size:  %dx%d\n", c.MatrixSize, c.MatrixSize)
	fmt.Fprintf(out, "  Warmup Runs:  %d\n", c.WarmupRuns)
	fmt.Fprintf(out, "  Trial Runs:   %d\n", c.TrialRuns)
	fmt.Fprintf(out, "  Backend:      %s\n", c.BackendName())
	fmt.Fprintf(out, "  Output:       %s (%s)\n", c.Output, c.Format)
	if c.MetricsFile != "" {
		fmt.Fprintf(out, "  Metrics File: %s\n", c.MetricsFile)
	}
	fmt.Fprintf(out, "  Log File:     %s\n", c.LogFilePath())
	if c.Seed != 0 {
		fmt.Fprintf(out, "  Seed:         %d\n", c.Seed)
	}
	fmt.Fprintf(out, "  Debug:        %v\n", c.Debug)

	if debug {
		printer := pp.New()
		printer.SetColoringEnabled(false)
		printer.SetOutput(out)
		fmt.Fprintln(out)
		printer.Println(c)
	}
}
