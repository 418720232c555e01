package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for the issuer console and CLI
var (
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verisure_uploads_total",
			Help: "Total number of issuance uploads by validation result",
		},
		[]string{"result"},
	)

	IssuanceAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verisure_issuance_attempts_total",
			Help: "Total number of confirmed issuance submissions by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	BatchRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verisure_batch_rows_total",
			Help: "Total number of batch rows reported by the API as issued or failed",
		},
		[]string{"status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "verisure_api_request_duration_seconds",
			Help:    "Duration of requests to the VeriSure API by action",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verisure_console_requests_total",
			Help: "Total number of console HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "verisure_console_request_duration_seconds",
			Help:    "Duration of console HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

var registerOnce sync.Once

// Register registers all Prometheus metrics with the default registry.
// Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(UploadsTotal)
		prometheus.MustRegister(IssuanceAttemptsTotal)
		prometheus.MustRegister(BatchRowsTotal)
		prometheus.MustRegister(APIRequestDuration)
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
	})
}
