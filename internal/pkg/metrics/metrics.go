// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests and multiple servers never collide
type Metrics struct {
	registry *prometheus.Registry

	OTPIssued         *prometheus.CounterVec
	OTPVerifications  *prometheus.CounterVec
	EligibilityChecks *prometheus.CounterVec
	PaymentsRecorded  *prometheus.CounterVec
	SweeperDeleted    *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		OTPIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uniportal", Name: "otp_issued_total",
			Help: "Password reset records issued.",
		}, []string{"user_type", "reset_type", "delivered"}),
		OTPVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uniportal", Name: "otp_verifications_total",
			Help: "OTP and reset-token verification outcomes.",
		}, []string{"result"}),
		EligibilityChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uniportal", Name: "eligibility_checks_total",
			Help: "Registration eligibility checks by outcome.",
		}, []string{"outcome"}),
		PaymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uniportal", Name: "payments_recorded_total",
			Help: "Fee payments recorded by mode.",
		}, []string{"mode"}),
		SweeperDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uniportal", Name: "sweeper_deleted_total",
			Help: "Expired rows removed by the background sweeper.",
		}, []string{"table"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "uniportal", Name: "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.OTPIssued, m.OTPVerifications, m.EligibilityChecks,
		m.PaymentsRecorded, m.SweeperDeleted, m.RequestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// GinMiddleware records request latency by matched route
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
