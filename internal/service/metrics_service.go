package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the review API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	ingestTotal     prometheus.Counter
	ingestFailures  prometheus.Counter
	reviewsTotal    prometheus.Counter
	queueBuildTime  prometheus.Observer
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	ingestTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingestions_total",
		Help: "Total ingestion events persisted",
	})

	ingestFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingestion_failures_total",
		Help: "Total ingestion events that failed",
	})

	reviewsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feedback_reviews_total",
		Help: "Total feedback items marked reviewed",
	})

	queueBuildTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "review_queue_build_seconds",
		Help:    "Time spent assembling the review queue",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, ingestTotal, ingestFailures, reviewsTotal, queueBuildTime, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		ingestTotal:     ingestTotal,
		ingestFailures:  ingestFailures,
		reviewsTotal:    reviewsTotal,
		queueBuildTime:  queueBuildTime,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one completed HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveIngestion counts one ingestion outcome.
func (s *MetricsService) ObserveIngestion(success bool) {
	if success {
		s.ingestTotal.Inc()
		return
	}
	s.ingestFailures.Inc()
}

// ObserveReview counts one review decision.
func (s *MetricsService) ObserveReview() {
	s.reviewsTotal.Inc()
}

// ObserveQueueBuild records time spent folding the review queue.
func (s *MetricsService) ObserveQueueBuild(duration time.Duration) {
	s.queueBuildTime.Observe(duration.Seconds())
}
