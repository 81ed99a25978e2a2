// internal/metrics/stats.go
// Package metrics reduces trial timings to summary statistics and derives
// floating-point throughput for the composite workload.
package metrics

import "math"

// Add folds value into the running statistic using Welford's online algorithm.
func (rs *RunningStat) Add(value float64) {
	rs.Count++
	if rs.Count == 1 {
		rs.Min = value
		rs.Max = value
	} else {
		if value < rs.Min {
			rs.Min = value
		}
		if value > rs.Max {
			rs.Max = value
		}
	}

	delta := value - rs.Mean
	rs.Mean += delta / float64(rs.Count)
	delta2 := value - rs.Mean
	rs.M2 += delta * delta2
}

// StdDev returns the sample standard deviation, or 0 with fewer than two values.
func (rs RunningStat) StdDev() float64 {
	if rs.Count < 2 {
		return 0
	}
	return math.Sqrt(rs.M2 / float64(rs.Count-1))
}

// Summarize reduces durations (milliseconds) to mean, min, max and standard
// deviation. The mean is clamped into [min, max] so rounding can never break
// min <= avg <= max.
func Summarize(durationsMs []float64) Summary {
	var rs RunningStat
	for _, d := range durationsMs {
		rs.Add(d)
	}
	if rs.Count == 0 {
		return Summary{}
	}
	return Summary{
		Count:    int(rs.Count),
		AvgMs:    math.Min(math.Max(rs.Mean, rs.Min), rs.Max),
		MinMs:    rs.Min,
		MaxMs:    rs.Max,
		StdDevMs: rs.StdDev(),
	}
}

// TotalOperations counts floating-point operations in one composite workload
// iteration on m×m matrices: three matrix products at 2·m³ each plus one
// elementwise add and one elementwise multiply at m² each.
func TotalOperations(m int) int64 {
	n := int64(m)
	matmulOps := 3 * 2 * n * n * n
	addOps := n * n
	mulOps := n * n
	return matmulOps + addOps + mulOps
}

// ThroughputGFLOPS converts an operation count and a mean iteration time into
// billions of operations per second. ok is false when avgMs is not positive,
// in which case throughput is undefined.
func ThroughputGFLOPS(totalOps int64, avgMs float64) (gflops float64, ok bool) {
	if !(avgMs > 0) || math.IsInf(avgMs, 0) {
		return 0, false
	}
	return float64(totalOps) / (avgMs / 1000) / 1e9, true
}

// VariancePercent is the spread (max - min) relative to the mean, in percent.
// It is a display aid only.
func VariancePercent(s Summary) (float64, bool) {
	if !(s.AvgMs > 0) {
		return 0, false
	}
	return (s.MaxMs - s.MinMs) / s.AvgMs * 100, true
}

// Degenerate reports why a set of durations is suspect, or "" when every
// sample is positive. It does not decide whether throughput exists; that
// follows from ThroughputGFLOPS on the average alone.
func Degenerate(durationsMs []float64, s Summary) string {
	if s.Count == 0 {
		return "no samples recorded"
	}
	for _, d := range durationsMs {
		if d < 0 {
			return "negative duration measured"
		}
	}
	if !(s.AvgMs > 0) {
		return "zero average duration; clock resolution too coarse"
	}
	for _, d := range durationsMs {
		if d == 0 {
			return "zero duration measured; clock resolution too coarse"
		}
	}
	return ""
}
