// internal/report/rank.go

// Package report aggregates per-adapter results into rankings, the console
// summary and the persisted report artifacts.
package report

import (
	"slices"

	"github.com/mwiater/adapterbench/internal/benchmark"
)

// Rank returns the successful results ordered by throughput, fastest first.
// Results without a throughput sort last; ties keep adapter index order.
// The input slice is not modified.
func Rank(results []benchmark.AdapterResult) []benchmark.AdapterResult {
	ranked := make([]benchmark.AdapterResult, 0, len(results))
	for _, r := range results {
		if r.Succeeded() {
			ranked = append(ranked, r)
		}
	}
	slices.SortStableFunc(ranked, func(a, b benchmark.AdapterResult) int {
		ga, okA := a.Throughput()
		gb, okB := b.Throughput()
		switch {
		case okA && !okB:
			return -1
		case !okA && okB:
			return 1
		case okA && okB && ga != gb:
			if ga > gb {
				return -1
			}
			return 1
		}
		return a.Adapter - b.Adapter
	})
	return ranked
}

// Failed returns the results that did not succeed, in adapter index order.
func Failed(results []benchmark.AdapterResult) []benchmark.AdapterResult {
	var failed []benchmark.AdapterResult
	for _, r := range results {
		if !r.Succeeded() {
			failed = append(failed, r)
		}
	}
	slices.SortStableFunc(failed, func(a, b benchmark.AdapterResult) int {
		return a.Adapter - b.Adapter
	})
	return failed
}
