package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Canvas metrics
	Placements     *prometheus.CounterVec
	CanvasSessions prometheus.Gauge

	// Application metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Repository metrics
	DBOperations *prometheus.CounterVec
	DBDuration   *prometheus.HistogramVec
	BreakerState *prometheus.GaugeVec
}

// NewCollector creates a collector with its own registry so tests can create many
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Placements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "canvas_placements_total",
				Help:      "Node placements by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		CanvasSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "canvas_sessions_active",
				Help:      "Open canvas websocket sessions",
			},
		),
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Commands and queries by type and status",
			},
			[]string{"kind", "type", "status"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Command and query duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind", "type"},
		),
		DBOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_operations_total",
				Help:      "Total number of database operations",
			},
			[]string{"operation", "table", "status"},
		),
		DBDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_operation_duration_seconds",
				Help:      "Database operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Placements,
		c.CanvasSessions,
		c.Operations,
		c.OperationDuration,
		c.DBOperations,
		c.DBDuration,
		c.BreakerState,
	)

	return c
}

// RecordPlacement counts a placement outcome: committed, failed or cancelled
func (c *Collector) RecordPlacement(kind, outcome string) {
	if c == nil {
		return
	}
	c.Placements.WithLabelValues(kind, outcome).Inc()
}

// RecordOperation records a command or query execution
func (c *Collector) RecordOperation(kind, opType string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	c.Operations.WithLabelValues(kind, opType, statusLabel(err)).Inc()
	c.OperationDuration.WithLabelValues(kind, opType).Observe(duration.Seconds())
}

// RecordDB records a repository call against a table
func (c *Collector) RecordDB(operation, table string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	c.DBOperations.WithLabelValues(operation, table, statusLabel(err)).Inc()
	c.DBDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordHTTP records a served request
func (c *Collector) RecordHTTP(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// SessionOpened and SessionClosed track live canvas connections
func (c *Collector) SessionOpened() {
	if c != nil {
		c.CanvasSessions.Inc()
	}
}

func (c *Collector) SessionClosed() {
	if c != nil {
		c.CanvasSessions.Dec()
	}
}

// SetBreakerState publishes a circuit breaker state
func (c *Collector) SetBreakerState(name string, state float64) {
	if c != nil {
		c.BreakerState.WithLabelValues(name).Set(state)
	}
}

// Registry returns the Prometheus registry for this collector
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
