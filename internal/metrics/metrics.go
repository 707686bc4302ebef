// metrics - Prometheus-коллекторы сервиса.
//
// Все методы безопасны на nil-получателе: без метрик (в тестах) вызовы - no-op.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "authgate"

type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	authFailures *prometheus.CounterVec
}

// New создаёт коллекторы и регистрирует их в reg.
// Паникует при повторной регистрации (конвенция prometheus).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		authFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_failures_total",
				Help:      "Rejected bearer authentications by internal reason.",
			},
			[]string{"reason"},
		),
	}

	reg.MustRegister(m.requests, m.duration, m.authFailures)
	return m
}

// ObserveRequest учитывает завершённый HTTP-запрос. route - шаблон маршрута
// (а не сырой путь), чтобы кардинальность меток оставалась ограниченной.
func (m *Metrics) ObserveRequest(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(dur.Seconds())
}

// AuthFailure учитывает отказ аутентификации.
func (m *Metrics) AuthFailure(reason string) {
	if m == nil {
		return
	}

	m.authFailures.WithLabelValues(reason).Inc()
}
