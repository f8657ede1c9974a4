package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// БД
	DBQueryDuration    *prometheus.HistogramVec
	DBOpenConnections  prometheus.Gauge
	DBInUseConnections prometheus.Gauge
	DBIdleConnections  prometheus.Gauge
	DBWaitCount        prometheus.Gauge

	// Планировщик бронирований
	ReservationsCreated  prometheus.Counter
	SchedulingConflicts  *prometheus.CounterVec
	BookingCodeRetries   prometheus.Counter
	StatusTransitions    *prometheus.CounterVec
	EventPublishFailures prometheus.Counter
}

// New регистрирует метрики в глобальном registry
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry регистрирует метрики в переданном registry (удобно для тестов)
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation", "status"}),
		DBOpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: labels,
		}),
		DBInUseConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: labels,
		}),
		DBIdleConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: labels,
		}),
		DBWaitCount: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: labels,
		}),

		ReservationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name:        "reservations_created_total",
			Help:        "Reservations successfully created",
			ConstLabels: labels,
		}),
		SchedulingConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "scheduling_conflicts_total",
			Help:        "Booking attempts rejected by the scheduler",
			ConstLabels: labels,
		}, []string{"reason"}),
		BookingCodeRetries: factory.NewCounter(prometheus.CounterOpts{
			Name:        "booking_code_retries_total",
			Help:        "Booking code collisions retried",
			ConstLabels: labels,
		}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "status_transitions_total",
			Help:        "Applied reservation and payment status transitions",
			ConstLabels: labels,
		}, []string{"kind", "to"}),
		EventPublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name:        "event_publish_failures_total",
			Help:        "Reservation events that could not be published",
			ConstLabels: labels,
		}),
	}
}

// Методы ниже используются usecase-слоем через интерфейс Recorder

func (m *Metrics) ObserveCreated() {
	m.ReservationsCreated.Inc()
}

func (m *Metrics) ObserveConflict(reason string) {
	m.SchedulingConflicts.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveCodeRetry() {
	m.BookingCodeRetries.Inc()
}

func (m *Metrics) ObserveTransition(kind, to string) {
	m.StatusTransitions.WithLabelValues(kind, to).Inc()
}

func (m *Metrics) ObservePublishFailure() {
	m.EventPublishFailures.Inc()
}
