package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signalsTotal  *prometheus.CounterVec
	skippedTotal  *prometheus.CounterVec
	fetchErrors   *prometheus.CounterVec
	phaseDuration *prometheus.HistogramVec
	lastPrice     *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "techscreen_signals_total",
				Help: "Selected signals by asset class, strategy and direction",
			},
			[]string{"asset_class", "strategy", "direction"},
		),
		skippedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "techscreen_instruments_skipped_total",
				Help: "Instruments excluded from a run, by asset class and reason",
			},
			[]string{"asset_class", "reason"},
		),
		fetchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "techscreen_fetch_errors_total",
				Help: "Market data fetch failures by asset class",
			},
			[]string{"asset_class"},
		),
		phaseDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "techscreen_phase_duration_seconds",
				Help:    "Duration of orchestration phases in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"asset_class", "phase"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "techscreen_last_price",
				Help: "Last close used for a signaled instrument",
			},
			[]string{"symbol"},
		),
	}
}

// RecordSignal records one selected signal.
func (r *Recorder) RecordSignal(assetClass, strategy, direction string) {
	r.signalsTotal.WithLabelValues(assetClass, strategy, direction).Inc()
}

// RecordInstrumentSkipped records an instrument excluded from a run.
func (r *Recorder) RecordInstrumentSkipped(assetClass, reason string) {
	r.skippedTotal.WithLabelValues(assetClass, reason).Inc()
}

// RecordFetchError records a market data fetch failure.
func (r *Recorder) RecordFetchError(assetClass string) {
	r.fetchErrors.WithLabelValues(assetClass).Inc()
}

// RecordPhaseDuration records how long one orchestration phase ran.
func (r *Recorder) RecordPhaseDuration(assetClass, phase string, seconds float64) {
	r.phaseDuration.WithLabelValues(assetClass, phase).Observe(seconds)
}

// RecordLastPrice records the last close for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}
