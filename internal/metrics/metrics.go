package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "todo_service"

// Login outcomes recorded on logins_total.
const (
	LoginSuccess       = "success"
	LoginUnknownUser   = "unknown_user"
	LoginBadPassword   = "bad_password"
	LoginInternalError = "error"
)

type Metrics struct {
	Requests     *prometheus.CounterVec
	Latency      *prometheus.HistogramVec
	TodosCreated prometheus.Counter
	Signups      prometheus.Counter
	Logins       *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		TodosCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "todos_created_total",
			Help:      "Todos created",
		}),
		Signups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signups_total",
			Help:      "Accounts created",
		}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result",
		}, []string{"result"}),
	}
	reg.MustRegister(m.Requests, m.Latency, m.TodosCreated, m.Signups, m.Logins)
	return m
}

// NewRegistry returns a registry preloaded with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// The recorder methods accept a nil receiver so callers can run without metrics.

func (m *Metrics) IncSignup() {
	if m != nil {
		m.Signups.Inc()
	}
}

func (m *Metrics) IncLogin(result string) {
	if m != nil {
		m.Logins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncTodoCreated() {
	if m != nil {
		m.TodosCreated.Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
