// internal/metrics/types.go
package metrics

// RunningStat accumulates durations one at a time. Mean and M2 follow
// Welford's recurrence, so StdDev needs no second pass over the samples.
type RunningStat struct {
	Count int64   `json:"-"`
	Mean  float64 `json:"mean"`
	M2    float64 `json:"-"` // squared deviations from Mean, summed
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Summary condenses one adapter's trial durations.
type Summary struct {
	Count    int     `json:"count"`
	AvgMs    float64 `json:"avgMs"`
	MinMs    float64 `json:"minMs"`
	MaxMs    float64 `json:"maxMs"`
	StdDevMs float64 `json:"stdDevMs"`
}
