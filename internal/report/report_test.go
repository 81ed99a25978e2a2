package report_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/mwiater/adapterbench/internal/benchmark"
	"github.com/mwiater/adapterbench/internal/report"
)

func ptr[T any](v T) *T { return &v }

func success(index int, name string, gflops float64) benchmark.AdapterResult {
	return benchmark.AdapterResult{
		Adapter: index,
		Name:    name,
		Backend: "vulkan",
		Status:  benchmark.StatusSuccess,
		Timing: &benchmark.Timing{
			AvgMs: 50, MinMs: 48, MaxMs: 53, StdDevMs: 1.5,
			Samples: []benchmark.TrialSample{{RunIndex: 1, DurationMs: 48}, {RunIndex: 2, DurationMs: 53}},
		},
		ThroughputGFLOPS: ptr(gflops),
		TotalOperations:  ptr(int64(6444548096)),
	}
}

func sampleResults() []benchmark.AdapterResult {
	flagged := success(3, "Coarse Clock", 0)
	flagged.ThroughputGFLOPS = nil
	flagged.Flagged = true
	flagged.FlagReason = "zero average duration; clock resolution too coarse"

	return []benchmark.AdapterResult{
		success(0, "Slow", 40),
		{Adapter: 1, Name: "Missing", Backend: "metal", Status: benchmark.StatusInitFailed},
		success(2, "Fast", 128.89),
		flagged,
		{Adapter: 4, Name: "Broken", Backend: "cuda", Status: benchmark.StatusError, ErrorMessage: "trial 4: device lost"},
		success(5, "Also Slow", 40),
	}
}

func sampleReport() benchmark.Report {
	cfg := report.ConfigFor(benchmark.DefaultOptions(), "cpu")
	now := time.Date(2025, 3, 4, 5, 6, 7, 891_000_000, time.FixedZone("X", 3600))
	return report.Build(cfg, sampleResults(), now, "run-1")
}

func TestRankOrdersByThroughput(t *testing.T) {
	results := sampleResults()
	before := append([]benchmark.AdapterResult(nil), results...)

	ranked := report.Rank(results)

	var order []int
	for _, r := range ranked {
		order = append(order, r.Adapter)
	}
	assert.Equal(t, []int{2, 0, 5, 3}, order)
	assert.Equal(t, before, results, "input must not be reordered")
}

func TestFailedKeepsIndexOrder(t *testing.T) {
	failed := report.Failed(sampleResults())
	require.Len(t, failed, 2)
	assert.Equal(t, 1, failed[0].Adapter)
	assert.Equal(t, 4, failed[1].Adapter)
}

func TestBuildFormatsTimestampInUTC(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, "2025-03-04T04:06:07.891Z", r.Timestamp)
	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, benchmark.OperationSequence, r.Config.OperationSequence)
	assert.Equal(t, benchmark.Description, r.Config.Description)
	assert.Equal(t, 1024, r.Config.MatrixSize)
	assert.Len(t, r.Results, 6)
}

func TestBuildAssignsRunID(t *testing.T) {
	r := report.Build(benchmark.ReportConfig{MatrixSize: 4, TrialCount: 1}, nil, time.Now(), "")
	assert.NotEmpty(t, r.RunID)
	assert.NotNil(t, r.Results)
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.RenderSummary(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "PERFORMANCE SUMMARY")
	assert.Contains(t, out, "128.89")
	assert.Contains(t, out, "Coarse Clock *")
	assert.Contains(t, out, "FAILED ADAPTERS")
	assert.Contains(t, out, "Missing (metal): INIT_FAILED")
	assert.Contains(t, out, "Broken (cuda): ERROR")
	assert.Contains(t, out, "Error: trial 4: device lost")
	assert.Less(t, strings.Index(out, "Fast"), strings.Index(out, "Slow"))
}

func TestRenderSummaryWithoutSuccesses(t *testing.T) {
	r := report.Build(benchmark.ReportConfig{MatrixSize: 4, TrialCount: 1},
		[]benchmark.AdapterResult{{Adapter: 0, Name: "Gone", Backend: "metal", Status: benchmark.StatusInitFailed}},
		time.Now(), "run")

	var buf bytes.Buffer
	require.NoError(t, report.RenderSummary(&buf, r))
	assert.Contains(t, buf.String(), "No adapter completed the benchmark.")
	assert.Contains(t, buf.String(), "Gone (metal): INIT_FAILED")
}

func TestWriteJSONRoundTripsAgainstSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.json")
	require.NoError(t, report.Write(path, "json", sampleReport()))
	require.NoError(t, report.ValidateFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
	assert.NotContains(t, string(data), "NaN")

	var decoded benchmark.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Nil(t, decoded.Results[1].Timing)
	assert.True(t, decoded.Results[3].Flagged)
}

func TestWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.yaml")
	require.NoError(t, report.Write(path, "yml", sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded["runId"])
	assert.Contains(t, string(data), "throughputGFLOPS: 128.89")
}

func TestWriteRejectsInvalidReport(t *testing.T) {
	r := sampleReport()
	r.Results[1].Timing = &benchmark.Timing{AvgMs: 1, MinMs: 1, MaxMs: 1, Samples: []benchmark.TrialSample{{RunIndex: 1, DurationMs: 1}}}

	path := filepath.Join(t.TempDir(), "results.json")
	err := report.Write(path, "json", r)
	require.ErrorIs(t, err, report.ErrInvalidReport)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing should be written for an invalid report")
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	err := report.Write(filepath.Join(t.TempDir(), "x"), "toml", sampleReport())
	require.Error(t, err)
}

func TestValidateRejectsMissingFields(t *testing.T) {
	err := report.Validate([]byte(`{"timestamp":"2025-01-01T00:00:00.000Z","results":[]}`))
	require.ErrorIs(t, err, report.ErrInvalidReport)
	assert.Contains(t, err.Error(), "runId")

	require.ErrorIs(t, report.Validate([]byte(`not json`)), report.ErrInvalidReport)
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adapterbench.prom")
	require.NoError(t, report.WriteTextfile(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "# TYPE adapterbench_throughput_gflops gauge")
	assert.Contains(t, out, `name="Fast"`)
	assert.Contains(t, out, "128.89")
	assert.Contains(t, out, `stat="stddev"`)
	assert.Contains(t, out, `status="INIT_FAILED"`)
	assert.Contains(t, out, `status="ERROR"`)
	assert.Contains(t, out, "adapterbench_total_operations")
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "adapterbench_throughput_gflops{") {
			assert.NotContains(t, line, `name="Coarse Clock"`, "flagged adapters have no throughput sample")
		}
	}
}
