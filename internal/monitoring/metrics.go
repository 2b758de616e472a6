package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// State machine metrics
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wheel_bot_transitions_total",
			Help: "Total number of wheel state transitions",
		},
		[]string{"symbol", "outcome"},
	)

	premiumCollected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wheel_bot_premium_collected_total",
			Help: "Cumulative premium credited at trade open",
		},
		[]string{"symbol"},
	)

	// Recommendation metrics
	recommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wheel_bot_recommendations_total",
			Help: "Total number of recommendations produced",
		},
		[]string{"symbol", "profile"},
	)

	// Volatility metrics
	blendedVolatility = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wheel_bot_blended_volatility",
			Help: "Current blended annualized volatility",
		},
		[]string{"symbol"},
	)

	estimatorFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wheel_bot_estimator_failures_total",
			Help: "Volatility estimator failures by method",
		},
		[]string{"method"},
	)

	// Market data metrics
	currentPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wheel_bot_current_price",
			Help: "Current price of the underlying",
		},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(transitionsTotal)
	prometheus.MustRegister(premiumCollected)
	prometheus.MustRegister(recommendationsTotal)
	prometheus.MustRegister(blendedVolatility)
	prometheus.MustRegister(estimatorFailures)
	prometheus.MustRegister(currentPrice)
}

// MetricsHandler handles the Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordTransition records a state transition and its outcome
func RecordTransition(symbol, outcome string) {
	transitionsTotal.WithLabelValues(symbol, outcome).Inc()
}

// RecordPremium records premium credited at trade open
func RecordPremium(symbol string, amount float64) {
	premiumCollected.WithLabelValues(symbol).Add(amount)
}

// RecordRecommendations records a recommendation batch
func RecordRecommendations(symbol, profile string, count int) {
	recommendationsTotal.WithLabelValues(symbol, profile).Add(float64(count))
}

// UpdateBlendedVolatility updates the blended volatility gauge
func UpdateBlendedVolatility(symbol string, value float64) {
	blendedVolatility.WithLabelValues(symbol).Set(value)
}

// RecordEstimatorFailure records a failed estimator by method
func RecordEstimatorFailure(method string) {
	estimatorFailures.WithLabelValues(method).Inc()
}

// UpdatePrice updates the current price gauge
func UpdatePrice(symbol string, price float64) {
	currentPrice.WithLabelValues(symbol).Set(price)
}
