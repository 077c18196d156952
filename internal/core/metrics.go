// AngelaMos | 2026
// metrics.go

package core

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	GuardDenialsTotal       *prometheus.CounterVec
	EntitlementChecksTotal  *prometheus.CounterVec
	PlanCacheLookupsTotal   *prometheus.CounterVec
	AuditWriteFailuresTotal prometheus.Counter
	QuotaOverageUsers       *prometheus.GaugeVec
}

func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartlink_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartlink_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		GuardDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartlink_guard_denials_total",
				Help: "Requests rejected by an authorization guard",
			},
			[]string{"guard"},
		),
		EntitlementChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartlink_entitlement_checks_total",
				Help: "Entitlement checks by requirement and outcome",
			},
			[]string{"requirement", "granted"},
		),
		PlanCacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartlink_plan_cache_lookups_total",
				Help: "Plan config cache lookups by result",
			},
			[]string{"result"},
		),
		AuditWriteFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "smartlink_audit_write_failures_total",
				Help: "Audit entries that could not be persisted",
			},
		),
		QuotaOverageUsers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "smartlink_quota_overage_users",
				Help: "Users whose usage exceeds their plan limit",
			},
			[]string{"resource"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GuardDenialsTotal,
		m.EntitlementChecksTotal,
		m.PlanCacheLookupsTotal,
		m.AuditWriteFailuresTotal,
		m.QuotaOverageUsers,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) GuardDenied(guard string) {
	if m == nil {
		return
	}
	m.GuardDenialsTotal.WithLabelValues(guard).Inc()
}

func (m *Metrics) EntitlementChecked(requirement string, granted bool) {
	if m == nil {
		return
	}
	m.EntitlementChecksTotal.WithLabelValues(requirement, strconv.FormatBool(granted)).Inc()
}

func (m *Metrics) PlanCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.PlanCacheLookupsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) AuditWriteFailed() {
	if m == nil {
		return
	}
	m.AuditWriteFailuresTotal.Inc()
}

func (m *Metrics) SetQuotaOverage(resource string, users int) {
	if m == nil {
		return
	}
	m.QuotaOverageUsers.WithLabelValues(resource).Set(float64(users))
}
