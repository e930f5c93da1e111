package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRateLimited     *prometheus.CounterVec

	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
	DBConnections   *prometheus.GaugeVec

	AllocationsTotal *prometheus.CounterVec
	LockWaitDuration prometheus.Histogram
}

// New регистрирует метрики в глобальном реестре prometheus (его отдает promhttp.Handler)
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в переданном реестре
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		HTTPRateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_rate_limited_total",
			Help:        "Requests rejected by the rate limiter",
			ConstLabels: constLabels,
		}, []string{"path"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		DBQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Database queries that returned an error",
			ConstLabels: constLabels,
		}, []string{"operation"}),

		DBConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections",
			Help:        "Database connection pool state",
			ConstLabels: constLabels,
		}, []string{"state"}),

		AllocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "room_allocations_total",
			Help:        "Room allocation attempts by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),

		LockWaitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "room_allocation_lock_wait_seconds",
			Help:        "Time spent waiting for the cross-instance allocation lock",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRateLimited,
		m.DBQueryDuration,
		m.DBQueryErrors,
		m.DBConnections,
		m.AllocationsTotal,
		m.LockWaitDuration,
	)

	return m
}

// ObserveAllocation учитывает исход распределения комнаты
func (m *Metrics) ObserveAllocation(outcome string) {
	m.AllocationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveLockWait учитывает время ожидания межинстансной блокировки
func (m *Metrics) ObserveLockWait(d time.Duration) {
	m.LockWaitDuration.Observe(d.Seconds())
}

// ObserveRateLimited учитывает запрос, отклоненный лимитером
func (m *Metrics) ObserveRateLimited(path string) {
	m.HTTPRateLimited.WithLabelValues(path).Inc()
}

// ObserveQuery учитывает длительность и ошибку запроса к БД
func (m *Metrics) ObserveQuery(operation string, d time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(operation).Observe(d.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// SetConnections выставляет состояние пула соединений
func (m *Metrics) SetConnections(open, inUse, idle int) {
	m.DBConnections.WithLabelValues("open").Set(float64(open))
	m.DBConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.DBConnections.WithLabelValues("idle").Set(float64(idle))
}
