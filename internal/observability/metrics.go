package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendship_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "friendship_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	grpcRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendship_grpc_requests_total",
			Help: "Total number of FriendGraph gRPC calls.",
		},
		[]string{"method", "code"},
	)
	grpcRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "friendship_grpc_request_duration_seconds",
			Help:    "FriendGraph gRPC call duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	eventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendship_events_published_total",
			Help: "Total number of domain and audit events published.",
		},
		[]string{"event_name"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "friendship_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
	metricsOnce sync.Once
)

func InitMetrics(reg prometheus.Registerer) {
	metricsOnce.Do(func() {
		reg.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			grpcRequestsTotal,
			grpcRequestDuration,
			eventsPublishedTotal,
			amqpPublishErrorsTotal,
		)
	})
}

// RecordHTTPRequest counts one request. Unmatched paths share a single route
// label so scanners cannot blow up the series count.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func RecordGRPCRequest(method, code string, duration time.Duration) {
	grpcRequestsTotal.WithLabelValues(method, code).Inc()
	grpcRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func IncEventPublished(eventName string) {
	if eventName == "" {
		eventName = "unknown"
	}
	eventsPublishedTotal.WithLabelValues(eventName).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
