package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics коллектор Prometheus-метрик сервиса
type Metrics struct {
	httpRequestsTotal  *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	syncEventsTotal    *prometheus.CounterVec
	externalCallsTotal *prometheus.CounterVec
	breakerState       *prometheus.GaugeVec
}

// New создает и регистрирует метрики сервиса
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: constLabels,
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request duration in seconds",
				ConstLabels: constLabels,
				Buckets:     prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		syncEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "sync_events_total",
				Help:        "Total number of processed webhook events",
				ConstLabels: constLabels,
			},
			[]string{"event_type", "status"},
		),
		externalCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "external_api_calls_total",
				Help:        "Total number of outbound external API calls",
				ConstLabels: constLabels,
			},
			[]string{"target", "outcome"},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "circuit_breaker_state",
				Help:        "Circuit breaker state per external service (0=closed, 1=half-open, 2=open)",
				ConstLabels: constLabels,
			},
			[]string{"target"},
		),
	}

	prometheus.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.syncEventsTotal,
		m.externalCallsTotal,
		m.breakerState,
	)

	return m
}

// ObserveHTTPRequest фиксирует обработанный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncSyncEvent фиксирует обработанное webhook-событие
func (m *Metrics) IncSyncEvent(eventType, status string) {
	m.syncEventsTotal.WithLabelValues(eventType, status).Inc()
}

// IncExternalCall фиксирует исходящий вызов внешнего API
func (m *Metrics) IncExternalCall(target, outcome string) {
	m.externalCallsTotal.WithLabelValues(target, outcome).Inc()
}

// SetBreakerState обновляет состояние circuit breaker'а внешнего сервиса
func (m *Metrics) SetBreakerState(target, state string) {
	var v float64
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	m.breakerState.WithLabelValues(target).Set(v)
}
