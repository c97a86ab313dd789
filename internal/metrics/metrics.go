package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "supplychain_http_requests_total",
	Help: "The total number of HTTP requests by route, method and status",
}, []string{"route", "method", "status"})

var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "supplychain_http_request_duration_seconds",
	Help:    "HTTP request latency by route and method",
	Buckets: prometheus.DefBuckets,
}, []string{"route", "method"})

var ChainCalls = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "supplychain_chain_calls_total",
	Help: "The total number of smart contract calls by method and outcome",
}, []string{"method", "outcome"})

var ChainCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "supplychain_chain_call_duration_seconds",
	Help:    "Smart contract call latency by method",
	Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
}, []string{"method"})

var MaterialsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "supplychain_materials_created_total",
	Help: "The total number of materials added on chain and stored",
})

var ShipmentStatusUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "supplychain_shipment_status_updates_total",
	Help: "The total number of shipment status updates by source",
}, []string{"source"})

var StageDrift = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "supplychain_material_stage_drift",
	Help: "Number of materials whose cached stage differs from the on-chain stage at the last check",
})

// ObserveChainCall records the outcome and latency of a contract call
func ObserveChainCall(method string, start time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	ChainCalls.WithLabelValues(method, outcome).Inc()
	ChainCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// Middleware records request counts and latency per matched route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

var StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "supplychain_store_operations_total",
	Help: "The total number of document store operations by backend, operation and outcome",
}, []string{"backend", "operation", "outcome"})

var StoreOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "supplychain_store_operation_duration_seconds",
	Help:    "Document store operation latency by backend and operation",
	Buckets: prometheus.DefBuckets,
}, []string{"backend", "operation"})

// ObserveStoreOperation records the outcome and latency of a store operation
func ObserveStoreOperation(backend, operation string, ok bool, duration time.Duration) {
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeError
	}
	StoreOperations.WithLabelValues(backend, operation, outcome).Inc()
	StoreOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}
