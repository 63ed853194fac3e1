// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the launchpad.
type Metrics struct {
	// Factory metrics
	TokensCreated   prometheus.Counter
	PurchasesTotal  prometheus.Counter
	SalesClosed     prometheus.Counter
	FeesWithdrawals prometheus.Counter
	OperationErrors *prometheus.CounterVec

	// Sale progress (approximate, whole units / currency units)
	UnitsSoldTotal prometheus.Counter
	RaisedTotal    prometheus.Counter

	// API metrics
	RequestDuration *prometheus.HistogramVec
	WSClients       prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered
// on the default registry. Call at most once per process.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "meme_coin"
	}

	return &Metrics{
		TokensCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "factory",
			Name:      "tokens_created_total",
			Help:      "Total number of token sales opened",
		}),
		PurchasesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "factory",
			Name:      "purchases_total",
			Help:      "Total number of accepted purchases",
		}),
		SalesClosed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "factory",
			Name:      "sales_closed_total",
			Help:      "Total number of sales that reached the cap and closed",
		}),
		FeesWithdrawals: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "factory",
			Name:      "fee_withdrawals_total",
			Help:      "Total number of successful fee withdrawals",
		}),
		OperationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "factory",
			Name:      "operation_errors_total",
			Help:      "Total number of rejected operations by op and reason",
		}, []string{"op", "reason"}),

		UnitsSoldTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sales",
			Name:      "units_sold_total",
			Help:      "Approximate total whole units sold across all sales",
		}),
		RaisedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sales",
			Name:      "raised_total",
			Help:      "Approximate total currency raised across all sales",
		}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration by endpoint",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		WSClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "ws_clients",
			Help:      "Current number of connected websocket event clients",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
