package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the estimate service.
type Metrics struct {
	EstimateRequests *prometheus.CounterVec // labels: outcome={success,unknown_postal_code,unavailable,error}
	EstimateDuration prometheus.Histogram
	EstimatesByTier  *prometheus.CounterVec // labels: tier={local,regional,national,continental}

	DistanceCache *prometheus.CounterVec // labels: result={hit,miss}

	// Dataset metrics.
	PostalCodesLoaded   prometheus.Gauge
	DatasetLoadDuration prometheus.Gauge

	// Event publishing metrics.
	EventsPublished *prometheus.CounterVec // labels: outcome={success,error}
	EventsEnabled   prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		EstimateRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shipping_estimate",
			Name:      "requests_total",
			Help:      "Estimate requests by outcome.",
		}, []string{"outcome"}),
		EstimateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shipping_estimate",
			Name:      "duration_seconds",
			Help:      "Time spent computing one estimate.",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		EstimatesByTier: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shipping_estimate",
			Name:      "tier_total",
			Help:      "Successful estimates by distance tier.",
		}, []string{"tier"}),
		DistanceCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shipping_estimate",
			Name:      "distance_cache_total",
			Help:      "Distance cache lookups by result.",
		}, []string{"result"}),
		PostalCodesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shipping_estimate",
			Name:      "postal_codes_loaded",
			Help:      "Number of postal codes held by the coordinate store.",
		}),
		DatasetLoadDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shipping_estimate",
			Name:      "dataset_load_duration_seconds",
			Help:      "Time taken by the one-time postal code dataset load.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shipping_estimate",
			Name:      "events_published_total",
			Help:      "Estimate events handed to Kafka by outcome.",
		}, []string{"outcome"}),
		EventsEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shipping_estimate",
			Name:      "events_enabled",
			Help:      "1 when estimate event publishing is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.EstimateRequests,
		m.EstimateDuration,
		m.EstimatesByTier,
		m.DistanceCache,
		m.PostalCodesLoaded,
		m.DatasetLoadDuration,
		m.EventsPublished,
		m.EventsEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		EstimateRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "shipping_estimate", Name: "requests_total"}, []string{"outcome"}),
		EstimateDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "shipping_estimate", Name: "duration_seconds"}),
		EstimatesByTier:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "shipping_estimate", Name: "tier_total"}, []string{"tier"}),
		DistanceCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "shipping_estimate", Name: "distance_cache_total"}, []string{"result"}),
		PostalCodesLoaded:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "shipping_estimate", Name: "postal_codes_loaded"}),
		DatasetLoadDuration: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "shipping_estimate", Name: "dataset_load_duration_seconds"}),
		EventsPublished:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "shipping_estimate", Name: "events_published_total"}, []string{"outcome"}),
		EventsEnabled:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "shipping_estimate", Name: "events_enabled"}),
	}
}
