package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	WorkflowTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contracts", Name: "workflow_transitions_total",
		Help: "Workflow transitions by action and outcome",
	}, []string{"action", "outcome"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contracts", Name: "http_requests_total",
		Help: "Handled HTTP requests",
	}, []string{"method", "status"})

	NotifyErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "contracts", Name: "notify_errors_total",
		Help: "Notification delivery errors",
	})

	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "contracts", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(WorkflowTransitions, HTTPRequests, NotifyErrors, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveHTTP(method string, status int) {
	HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
