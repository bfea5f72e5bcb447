package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "gitee_mcp"
)

// Metrics holds all Prometheus metrics for the server
type Metrics struct {
	// Tool execution metrics
	ToolExecutionDuration *prometheus.HistogramVec
	ToolExecutionTotal    *prometheus.CounterVec
	ToolExecutionErrors   *prometheus.CounterVec
	ToolsInFlight         prometheus.Gauge

	// Outbound Gitee API metrics
	GiteeRequestsTotal   *prometheus.CounterVec
	GiteeRequestDuration *prometheus.HistogramVec

	// Connection metrics
	ActiveConnections prometheus.Gauge
	ConnectionsTotal  prometheus.Counter

	// Protocol message metrics
	MessagesReceived *prometheus.CounterVec
	MessagesSent     *prometheus.CounterVec

	RateLimitHits *prometheus.CounterVec
}

// New creates a Metrics instance registered on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a Metrics instance registered on reg
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Buckets: 10ms, 50ms, 100ms, 250ms, 500ms, 1s, 2.5s, 5s, 10s, 30s
		ToolExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_execution_duration_seconds",
				Help:      "Duration of tool execution in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"tool_name", "status"},
		),

		ToolExecutionTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_execution_total",
				Help:      "Total number of tool executions",
			},
			[]string{"tool_name", "status"},
		),

		ToolExecutionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_execution_errors_total",
				Help:      "Total number of tool execution errors",
			},
			[]string{"tool_name", "error_type"},
		),

		ToolsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tools_in_flight",
				Help:      "Number of tool invocations currently running",
			},
		),

		GiteeRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gitee_requests_total",
				Help:      "Total number of Gitee API requests by method and status class",
			},
			[]string{"method", "status_class"},
		),

		GiteeRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "gitee_request_duration_seconds",
				Help:      "Duration of Gitee API requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),

		ActiveConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_connections",
				Help:      "Number of active WebSocket connections",
			},
		),

		ConnectionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connections_total",
				Help:      "Total number of WebSocket connections established",
			},
		),

		MessagesReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_received_total",
				Help:      "Total number of protocol messages received by method",
			},
			[]string{"method"},
		),

		MessagesSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_sent_total",
				Help:      "Total number of protocol messages sent by outcome",
			},
			[]string{"outcome"},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Total number of tool calls rejected by the inbound rate limiter",
			},
			[]string{"scope"},
		),
	}
}

// RecordToolExecution records a tool execution with duration and status
func (m *Metrics) RecordToolExecution(toolName string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.ToolExecutionDuration.WithLabelValues(toolName, status).Observe(duration.Seconds())
	m.ToolExecutionTotal.WithLabelValues(toolName, status).Inc()
}

// RecordToolExecutionError records a tool execution error with error type
func (m *Metrics) RecordToolExecutionError(toolName, errorType string) {
	m.ToolExecutionErrors.WithLabelValues(toolName, errorType).Inc()
}

// StartToolExecutionTimer returns a function that when called, records the tool execution duration
// Usage: done := m.StartToolExecutionTimer(name); ...; done(err)
func (m *Metrics) StartToolExecutionTimer(toolName string) func(error) {
	start := time.Now()
	m.ToolsInFlight.Inc()
	return func(err error) {
		m.ToolsInFlight.Dec()
		m.RecordToolExecution(toolName, time.Since(start), err)
	}
}

// RecordGiteeRequest records one outbound API call. A status of zero means
// the request never produced a response.
func (m *Metrics) RecordGiteeRequest(method string, status int, duration time.Duration) {
	m.GiteeRequestsTotal.WithLabelValues(method, statusClass(status)).Inc()
	m.GiteeRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordConnectionStart records when a new connection is established
func (m *Metrics) RecordConnectionStart() {
	m.ConnectionsTotal.Inc()
	m.ActiveConnections.Inc()
}

// RecordConnectionEnd records when a connection is closed
func (m *Metrics) RecordConnectionEnd() {
	m.ActiveConnections.Dec()
}

// RecordMessageReceived records an inbound protocol message
func (m *Metrics) RecordMessageReceived(method string) {
	m.MessagesReceived.WithLabelValues(method).Inc()
}

// RecordMessageSent records an outbound response, "result" or "error"
func (m *Metrics) RecordMessageSent(outcome string) {
	m.MessagesSent.WithLabelValues(outcome).Inc()
}

// RecordRateLimitHit records a rejected call; scope is "global" or "tool"
func (m *Metrics) RecordRateLimitHit(scope string) {
	m.RateLimitHits.WithLabelValues(scope).Inc()
}

func statusClass(status int) string {
	if status <= 0 {
		return "network_error"
	}
	return strconv.Itoa(status/100) + "xx"
}
