package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	UsersCreated         prometheus.Counter
	ExpensesCreated      prometheus.Counter
	ExpenseTransitions   *prometheus.CounterVec
	NotificationFailures prometheus.Counter
	HTTPRequests         *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
}

// New creates all metrics on a private registry, so that several instances
// can coexist in one process
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "expenseflow_users_created_total",
			Help: "Total number of users created",
		}),
		ExpensesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "expenseflow_expenses_created_total",
			Help: "Total number of expenses submitted",
		}),
		ExpenseTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "expenseflow_expense_transitions_total",
			Help: "Total number of expense status changes by resulting status",
		}, []string{"status"}),
		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "expenseflow_notification_failures_total",
			Help: "Total number of notifications that could not be delivered",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "expenseflow_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status code",
		}, []string{"method", "route", "code"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "expenseflow_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncrementUsersCreated increments the users created counter by 1
func (m *Metrics) IncrementUsersCreated() {
	if m == nil {
		return
	}
	m.UsersCreated.Inc()
}

// IncrementExpensesCreated increments the expenses created counter by 1
func (m *Metrics) IncrementExpensesCreated() {
	if m == nil {
		return
	}
	m.ExpensesCreated.Inc()
}

// RecordTransition counts an expense status change
func (m *Metrics) RecordTransition(status string) {
	if m == nil {
		return
	}
	m.ExpenseTransitions.WithLabelValues(status).Inc()
}

// IncrementNotificationFailures counts a failed notification
func (m *Metrics) IncrementNotificationFailures() {
	if m == nil {
		return
	}
	m.NotificationFailures.Inc()
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
