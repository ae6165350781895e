package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// SyncJob is the Pushgateway job name for pack sync runs.
const SyncJob = "hirepath_stripe_sync"

// HTTP Request Metrics
var (
	// HTTPRequestsTotal counts handled requests by route and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks request latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)

// Pricing Metrics
var (
	// PackSyncTotal counts pack sync results by outcome
	PackSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_pack_sync_total",
			Help: "Pack synchronisations with the payment provider by outcome",
		},
		[]string{"outcome"},
	)

	// CheckoutsTotal counts checkout attempts by result
	CheckoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_checkouts_total",
			Help: "Checkout sessions by result",
		},
		[]string{"result"},
	)
)

// LLM Metrics
var (
	// LLMRequestDuration tracks generation latency by operation
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "LLM generation duration in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"operation"},
	)

	// LLMErrorsTotal counts failed generations by operation
	LLMErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_errors_total",
			Help: "Failed LLM generations by operation",
		},
		[]string{"operation"},
	)
)

// Middleware records HTTP metrics. Unmatched routes are grouped under "unmatched".
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// SyncObserver feeds pack sync outcomes into PackSyncTotal.
type SyncObserver struct{}

func (SyncObserver) ObservePackSync(outcome string) {
	PackSyncTotal.WithLabelValues(outcome).Inc()
}

// PushSync sends PackSyncTotal to a Pushgateway, replacing the previous run.
func PushSync(ctx context.Context, gatewayURL string) error {
	if err := push.New(gatewayURL, SyncJob).Collector(PackSyncTotal).PushContext(ctx); err != nil {
		return fmt.Errorf("push sync metrics: %w", err)
	}
	return nil
}

// ObserveLLM records the duration of one generation and whether it failed.
func ObserveLLM(operation string, start time.Time, err error) {
	LLMRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		LLMErrorsTotal.WithLabelValues(operation).Inc()
	}
}
