package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fusionsTotal    *prometheus.CounterVec
	tradesTotal     *prometheus.CounterVec
	rejectionsTotal *prometheus.CounterVec
	balance         *prometheus.GaugeVec
	errorsTotal     *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fusionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepilot_fusions_total",
				Help: "Total number of fusion decisions produced",
			},
			[]string{"symbol", "recommendation"},
		),
		tradesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepilot_trades_total",
				Help: "Total number of executed trades",
			},
			[]string{"portfolio", "type"},
		),
		rejectionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepilot_trade_rejections_total",
				Help: "Total number of rejected trade attempts",
			},
			[]string{"reason"},
		),
		balance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradepilot_portfolio_balance",
				Help: "Current cash balance per portfolio",
			},
			[]string{"portfolio"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepilot_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradepilot_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFusion records a fusion decision for a symbol.
func (r *Recorder) RecordFusion(symbol, recommendation string) {
	r.fusionsTotal.WithLabelValues(symbol, recommendation).Inc()
}

// RecordTrade records an executed trade.
func (r *Recorder) RecordTrade(portfolioID, tradeType string) {
	r.tradesTotal.WithLabelValues(portfolioID, tradeType).Inc()
}

// RecordRejection records a rejected trade attempt.
func (r *Recorder) RecordRejection(reason string) {
	r.rejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordBalance records the current cash balance of a portfolio.
func (r *Recorder) RecordBalance(portfolioID string, balance float64) {
	r.balance.WithLabelValues(portfolioID).Set(balance)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
