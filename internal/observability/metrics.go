package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "farm_yield"

// Metrics holds the Prometheus counters, histograms, and gauges for the engine.
type Metrics struct {
	Predictions      prometheus.Counter
	PredictionErrors prometheus.Counter
	EstimateDuration prometheus.Histogram
	PredictedYield   *prometheus.HistogramVec // labels: crop

	Forecasts  prometheus.Counter
	RiskAlerts *prometheus.CounterVec // labels: category, severity

	RecordsAppended  prometheus.Counter
	StorageErrors    *prometheus.CounterVec // labels: op={load,save,decode}
	RecordStoreReady prometheus.Gauge

	PublishErrors     *prometheus.CounterVec // labels: topic={predictions,alerts}
	PublishingEnabled prometheus.Gauge
}

// NewMetrics creates and registers all engine metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)

	prometheus.MustRegister(
		m.Predictions,
		m.PredictionErrors,
		m.EstimateDuration,
		m.PredictedYield,
		m.Forecasts,
		m.RiskAlerts,
		m.RecordsAppended,
		m.StorageErrors,
		m.PublishErrors,
		m.RecordStoreReady,
		m.PublishingEnabled,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}

	return &Metrics{
		Predictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      help("Total yield predictions served."),
		}),
		PredictionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_errors_total",
			Help:      help("Total yield estimation requests rejected or failed."),
		}),
		EstimateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "estimate_duration_seconds",
			Help:      help("Duration of a yield estimation, including simulated latency."),
			Buckets:   []float64{0.0005, 0.001, 0.01, 0.1, 0.5, 1, 2, 5},
		}),
		PredictedYield: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "predicted_yield_kg_per_ha",
			Help:      help("Distribution of predicted yields by crop."),
			Buckets:   []float64{1000, 2000, 3000, 4000, 5000, 6000, 10000, 50000, 100000},
		}, []string{"crop"}),
		Forecasts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecasts_total",
			Help:      help("Total synthetic forecasts generated."),
		}),
		RiskAlerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_alerts_total",
			Help:      help("Risk alerts emitted by category and severity."),
		}, []string{"category", "severity"}),
		RecordsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_appended_total",
			Help:      help("Total farm records saved."),
		}),
		StorageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      help("Record storage failures by operation."),
		}, []string{"op"}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      help("Kafka publish failures by topic kind."),
		}, []string{"topic"}),
		RecordStoreReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "record_store_ready",
			Help:      help("1 when the record store has been initialized, 0 otherwise."),
		}),
		PublishingEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publishing_enabled",
			Help:      help("1 when Kafka event publishing is enabled, 0 otherwise."),
		}),
	}
}
