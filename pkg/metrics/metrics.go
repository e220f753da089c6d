package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Latency buckets in milliseconds. The long tail covers gateway status
// polling, which waits between attempts while the gateway settles.
var HistogramBuckets = []float64{
	25, 50, 75, 100, 150, 200, 300, 400, 500,
	750, 1000, 1500, 2000,
	3000, 5000, 7500, 10000, 15000, 30000,
}

// Metric is a definition for the name, description, type, ID, and
// prometheus.Collector type (i.e. CounterVec, Summary, etc) of each metric
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates prometheus.Collector based on Metric.Type
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	var metric prometheus.Collector
	switch m.Type {
	case "counter_vec":
		metric = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "counter":
		metric = prometheus.NewCounter(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
		)
	case "gauge":
		metric = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
		)
	case "histogram_vec":
		metric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
				Buckets:   HistogramBuckets,
			},
			m.Args,
		)
	case "summary_vec":
		metric = prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	}
	return metric
}

// MetricGatewayCallback counts gateway confirmation deliveries, partitioned
// by gateway and terminal handling status.
var MetricGatewayCallback = &Metric{
	ID:          "gwCb",
	Name:        "gateway_callback_total",
	Description: "Gateway confirmation deliveries processed, partitioned by gateway and result.",
	Type:        "counter_vec",
	Args:        []string{"gateway", "result"},
}

// ObserveGatewayCallback increments the callback counter. A no-op until the
// metric has been registered by the HTTP middleware setup.
func ObserveGatewayCallback(gateway, result string) {
	if c, ok := MetricGatewayCallback.MetricCollector.(*prometheus.CounterVec); ok {
		c.WithLabelValues(gateway, result).Inc()
	}
}

// MillisecondsSince reports elapsed wall time as fractional milliseconds.
func MillisecondsSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
