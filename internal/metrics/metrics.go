package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usertask_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "usertask_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	StoreConnectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usertask_store_connect_attempts_total",
			Help: "Store connection attempts by outcome",
		},
		[]string{"driver", "outcome"},
	)

	TaskCompletionChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usertask_task_completion_changes_total",
			Help: "Task completion flag writes by resulting state",
		},
		[]string{"state"},
	)
)

func RecordHttpRequest(method, endpoint, status string, duration time.Duration) {
	HttpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HttpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func RecordStoreConnect(driver string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	StoreConnectAttempts.WithLabelValues(driver, outcome).Inc()
}

func RecordCompletionChange(completed bool) {
	state := "pending"
	if completed {
		state = "completed"
	}
	TaskCompletionChanges.WithLabelValues(state).Inc()
}
