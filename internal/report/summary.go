package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mwiater/adapterbench/internal/benchmark"
	"github.com/mwiater/adapterbench/internal/metrics"
	"github.com/mwiater/adapterbench/internal/util"
)

const (
	maxNameRunes = 40
	errorWidth   = 72
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	topStyle     = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("46"))
	flaggedStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("220"))
	failedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// RenderSummary writes the ranked performance table followed by any failed
// adapters.
func RenderSummary(w io.Writer, r benchmark.Report) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("PERFORMANCE SUMMARY"))
	b.WriteString("\n")

	ranked := Rank(r.Results)
	if len(ranked) == 0 {
		b.WriteString("No adapter completed the benchmark.\n")
	} else {
		b.WriteString(rankingTable(ranked))
		b.WriteString("\n")
		for _, res := range ranked {
			if res.Flagged {
				fmt.Fprintf(&b, "* %s: %s\n", res.Name, res.FlagReason)
			}
		}
	}

	if failed := Failed(r.Results); len(failed) > 0 {
		b.WriteString("\n")
		b.WriteString(failedStyle.Render("FAILED ADAPTERS"))
		b.WriteString("\n")
		for _, res := range failed {
			fmt.Fprintf(&b, "  %s (%s): %s\n", res.Name, res.Backend, res.Status)
			if res.ErrorMessage != "" {
				for i, line := range util.WrapToWidth("Error: "+res.ErrorMessage, errorWidth) {
					if i > 0 {
						b.WriteString("  ")
					}
					fmt.Fprintf(&b, "    %s\n", line)
				}
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func rankingTable(ranked []benchmark.AdapterResult) string {
	flagged := make(map[int]bool, len(ranked))
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("#", "Adapter", "Backend", "Avg (ms)", "GFLOPS", "Ops (B)")

	for i, res := range ranked {
		flagged[i] = res.Flagged
		name := util.TruncateRunes(res.Name, maxNameRunes)
		if res.Flagged {
			name += " *"
		}
		t.Row(strconv.Itoa(i+1), name, res.Backend, avgCell(res), gflopsCell(res), opsCell(res))
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case flagged[row]:
			return flaggedStyle
		case row == 0:
			return topStyle
		}
		return cellStyle
	})
	return t.String()
}

func avgCell(res benchmark.AdapterResult) string {
	if res.Timing == nil {
		return "-"
	}
	summary := metrics.Summary{
		Count:    len(res.Timing.Samples),
		AvgMs:    res.Timing.AvgMs,
		MinMs:    res.Timing.MinMs,
		MaxMs:    res.Timing.MaxMs,
		StdDevMs: res.Timing.StdDevMs,
	}
	if pct, ok := metrics.VariancePercent(summary); ok {
		return fmt.Sprintf("%.2f ±%.1f%%", res.Timing.AvgMs, pct)
	}
	return fmt.Sprintf("%.2f", res.Timing.AvgMs)
}

func gflopsCell(res benchmark.AdapterResult) string {
	if g, ok := res.Throughput(); ok {
		return fmt.Sprintf("%.2f", g)
	}
	return "n/a"
}

func opsCell(res benchmark.AdapterResult) string {
	if res.TotalOperations == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", float64(*res.TotalOperations)/1e9)
}
