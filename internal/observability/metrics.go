package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RegistrationsTotal  prometheus.Counter
	LoginsTotal         *prometheus.CounterVec
	MembersAddedTotal   prometheus.Counter
	OrgsCreatedTotal    prometheus.Counter
}

// NewMetrics creates the collectors and registers them with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orgs_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "orgs_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RegistrationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orgs_registrations_total",
			Help: "Accounts successfully registered",
		}),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orgs_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		MembersAddedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orgs_members_added_total",
			Help: "Users added to organizations",
		}),
		OrgsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orgs_organizations_created_total",
			Help: "Organizations created, including default organizations",
		}),
	}
	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RegistrationsTotal,
		m.LoginsTotal,
		m.MembersAddedTotal,
		m.OrgsCreatedTotal,
	)
	return m
}

// RegisterDBStats exports connection pool statistics for conn.
func RegisterDBStats(registry prometheus.Registerer, conn *sql.DB) {
	registry.MustRegister(collectors.NewDBStatsCollector(conn, "orgs"))
}

// Registration counts one successful registration (and its default organization).
func (m *Metrics) Registration() {
	m.RegistrationsTotal.Inc()
	m.OrgsCreatedTotal.Inc()
}

// Login counts one login attempt.
func (m *Metrics) Login(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

// OrganizationCreated counts one explicitly created organization.
func (m *Metrics) OrganizationCreated() { m.OrgsCreatedTotal.Inc() }

// MemberAdded counts one membership insert.
func (m *Metrics) MemberAdded() { m.MembersAddedTotal.Inc() }

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and latency labelled by the matched mux route template,
// so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(registry prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
