package ward

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports operation outcomes as a duration
// histogram and a result counter, for deployments scraped by a
// Prometheus server.
type PrometheusMetricsRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder constructs a recorder and registers its
// collectors with reg. A nil registerer leaves registration to the
// caller via Collectors.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	rec := &PrometheusMetricsRecorder{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ward",
			Name:      "operation_duration_seconds",
			Help:      "Duration of ward operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ward",
			Name:      "operation_results_total",
			Help:      "Ward operation outcomes by status.",
		}, []string{"operation", "status"}),
	}
	if reg != nil {
		for _, c := range rec.Collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return rec, nil
}

// Collectors returns the underlying collectors for manual registration.
func (r *PrometheusMetricsRecorder) Collectors() []prometheus.Collector {
	return []prometheus.Collector{r.durations, r.results}
}

// Observe records a ward operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, status).Inc()
}

// BedStateCollector exports the ward's current bed counts per state as
// gauges, computed on scrape.
type BedStateCollector struct {
	service *Service
	desc    *prometheus.Desc
}

// NewBedStateCollector constructs a collector reading counts from svc.
func NewBedStateCollector(svc *Service) *BedStateCollector {
	return &BedStateCollector{
		service: svc,
		desc: prometheus.NewDesc(
			"ward_beds",
			"Number of ward beds by state.",
			[]string{"state"},
			nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *BedStateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *BedStateCollector) Collect(ch chan<- prometheus.Metric) {
	counts := c.service.CountBeds(context.Background())
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(counts.Occupied), "occupied")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(counts.Vacant), "vacant")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(counts.Blocked), "blocked")
}
