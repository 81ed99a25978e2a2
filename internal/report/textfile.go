package report

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mwiater/adapterbench/internal/benchmark"
)

const namespace = "adapterbench"

var adapterLabels = []string{"adapter", "name", "backend"}

type collectors struct {
	throughput *prometheus.GaugeVec
	duration   *prometheus.GaugeVec
	status     *prometheus.GaugeVec
	operations *prometheus.GaugeVec
}

func newCollectors(reg prometheus.Registerer) (*collectors, error) {
	c := &collectors{
		throughput: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "throughput_gflops",
			Help:      "Measured composite workload throughput in GFLOPS.",
		}, adapterLabels),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trial_duration_ms",
			Help:      "Trial duration statistics in milliseconds.",
		}, append(append([]string(nil), adapterLabels...), "stat")),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "adapter_status",
			Help:      "Terminal status of each adapter (1 for the reported status).",
		}, append(append([]string(nil), adapterLabels...), "status")),
		operations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_operations",
			Help:      "Floating-point operations per workload iteration.",
		}, adapterLabels),
	}
	for _, col := range []prometheus.Collector{c.throughput, c.duration, c.status, c.operations} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *collectors) observe(res benchmark.AdapterResult) {
	labels := prometheus.Labels{
		"adapter": strconv.Itoa(res.Adapter),
		"name":    res.Name,
		"backend": res.Backend,
	}
	c.status.MustCurryWith(labels).WithLabelValues(string(res.Status)).Set(1)

	if g, ok := res.Throughput(); ok {
		c.throughput.With(labels).Set(g)
	}
	if res.TotalOperations != nil {
		c.operations.With(labels).Set(float64(*res.TotalOperations))
	}
	if res.Timing != nil {
		d := c.duration.MustCurryWith(labels)
		d.WithLabelValues("avg").Set(res.Timing.AvgMs)
		d.WithLabelValues("min").Set(res.Timing.MinMs)
		d.WithLabelValues("max").Set(res.Timing.MaxMs)
		d.WithLabelValues("stddev").Set(res.Timing.StdDevMs)
	}
}

// Gatherer returns a registry populated with the report's metrics.
func Gatherer(r benchmark.Report) (prometheus.Gatherer, error) {
	reg := prometheus.NewRegistry()
	c, err := newCollectors(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	for _, res := range r.Results {
		c.observe(res)
	}
	return reg, nil
}

// WriteTextfile writes the report's metrics in the Prometheus text format for
// the node exporter textfile collector. The file is replaced atomically.
func WriteTextfile(path string, r benchmark.Report) error {
	g, err := Gatherer(r)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(filepath.Clean(path), g); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
