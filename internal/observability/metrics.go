package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const componentLabel = "backend"

// Collector owns the Prometheus registries exported by the service. Health and
// activity registries can be reset; analytics series live for the process lifetime.
type Collector struct {
	service   string
	namespace string

	mu        sync.RWMutex
	health    *healthMetrics
	activity  *activityMetrics
	analytics *analyticsMetrics
}

type healthMetrics struct {
	registry  *prometheus.Registry
	up        prometheus.Gauge
	ready     prometheus.Gauge
	component *prometheus.GaugeVec
}

type activityMetrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.HistogramVec
	clientRequests *prometheus.HistogramVec
	dbRequests     *prometheus.HistogramVec
	errors         *prometheus.CounterVec
}

type analyticsMetrics struct {
	registry      *prometheus.Registry
	cardEvents    *prometheus.CounterVec
	approvedLimit prometheus.Histogram
}

// NewCollector initializes all registries for the named service.
func NewCollector(namespace, service string) *Collector {
	c := &Collector{service: service, namespace: namespace}
	c.NewHealthMetrics()
	c.NewActivityMetrics()
	c.analytics = newAnalyticsMetrics(namespace, service)
	return c
}

// NewHealthMetrics re-creates the health registry, dropping recorded values.
func (c *Collector) NewHealthMetrics() {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"name": c.service, "type": componentLabel}
	m := &healthMetrics{
		registry: reg,
		up: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   c.namespace,
			Name:        "up",
			Help:        "Application UP status.",
			ConstLabels: labels,
		}),
		ready: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   c.namespace,
			Name:        "ready",
			Help:        "Application READY status.",
			ConstLabels: labels,
		}),
		component: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   c.namespace,
			Name:        "ready_component",
			Help:        "Application component UP status.",
			ConstLabels: prometheus.Labels{"name": c.service},
		}, []string{"component_type", "component", "severity"}),
	}
	reg.MustRegister(m.up, m.ready, m.component)

	c.mu.Lock()
	c.health = m
	c.mu.Unlock()
}

// NewActivityMetrics re-creates the activity registry, dropping recorded values.
func (c *Collector) NewActivityMetrics() {
	reg := prometheus.NewRegistry()
	requestLabels := []string{"operation", "http_status_code", "error"}
	m := &activityMetrics{
		registry: reg,
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   c.namespace,
			Name:        "http_request_duration_seconds",
			Help:        "Application request latency.",
			ConstLabels: prometheus.Labels{"service": c.service, "span_kind": "server"},
			Buckets:     []float64{.005, .01, .025, .05, .075, .1, .2, .3, .4, .5, .75, 1, 2.5, 5, 7.5, 10},
		}, requestLabels),
		clientRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   c.namespace,
			Name:        "http_client_request_duration_seconds",
			Help:        "Application external request latency.",
			ConstLabels: prometheus.Labels{"service": c.service, "span_kind": "client"},
			Buckets:     prometheus.DefBuckets,
		}, requestLabels),
		dbRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   c.namespace,
			Name:        "db_request_duration_seconds",
			Help:        "Application sql query latency.",
			ConstLabels: prometheus.Labels{"service": c.service, "span_kind": "client"},
			Buckets:     prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"operation", "db_type", "error"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   c.namespace,
			Name:        "http_request_errors_count",
			Help:        "Application errors count.",
			ConstLabels: prometheus.Labels{"service": c.service},
		}, []string{"operation", "http_status_code", "error_code"}),
	}
	reg.MustRegister(m.requests, m.clientRequests, m.dbRequests, m.errors)

	c.mu.Lock()
	c.activity = m
	c.mu.Unlock()
}

func newAnalyticsMetrics(namespace, service string) *analyticsMetrics {
	reg := prometheus.NewRegistry()
	m := &analyticsMetrics{
		registry: reg,
		cardEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "card_events_total",
			Help:        "Account and card lifecycle events.",
			ConstLabels: prometheus.Labels{"service": service},
		}, []string{"event"}),
		approvedLimit: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "approved_limit_minor_units",
			Help:        "Credit limits granted on issuance and increase.",
			ConstLabels: prometheus.Labels{"service": service},
			Buckets:     prometheus.ExponentialBuckets(1_000_00, 2, 12),
		}),
	}
	reg.MustRegister(m.cardEvents, m.approvedLimit)
	return m
}

func (c *Collector) healthSet() *healthMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.health
}

func (c *Collector) activitySet() *activityMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activity
}

// WriteUpStatus records liveness from the probe's HTTP status.
func (c *Collector) WriteUpStatus(httpStatus int) {
	if c == nil {
		return
	}
	c.healthSet().up.Set(statusValue(httpStatus))
}

// WriteReadyStatus records readiness from the probe's HTTP status.
func (c *Collector) WriteReadyStatus(httpStatus int) {
	if c == nil {
		return
	}
	c.healthSet().ready.Set(statusValue(httpStatus))
}

// WriteReadyComponentStatus records one dependency's availability.
func (c *Collector) WriteReadyComponentStatus(component, componentType, severity string, up bool) {
	if c == nil {
		return
	}
	value := 0.0
	if up {
		value = 1
	}
	c.healthSet().component.WithLabelValues(componentType, component, severity).Set(value)
}

// WriteTiming records an inbound request.
func (c *Collector) WriteTiming(operation string, httpStatus int, duration time.Duration) {
	if c == nil {
		return
	}
	c.activitySet().requests.
		WithLabelValues(operation, strconv.Itoa(httpStatus), strconv.FormatBool(httpStatus >= http.StatusBadRequest)).
		Observe(duration.Seconds())
}

// WriteExternalTiming records an outbound HTTP call.
func (c *Collector) WriteExternalTiming(operation string, httpStatus int, failed bool, duration time.Duration) {
	if c == nil {
		return
	}
	c.activitySet().clientRequests.
		WithLabelValues(operation, strconv.Itoa(httpStatus), strconv.FormatBool(failed)).
		Observe(duration.Seconds())
}

// WriteDBTiming records a database statement.
func (c *Collector) WriteDBTiming(operation, dbType string, failed bool, duration time.Duration) {
	if c == nil {
		return
	}
	c.activitySet().dbRequests.
		WithLabelValues(operation, dbType, strconv.FormatBool(failed)).
		Observe(duration.Seconds())
}

// WriteError counts a request that ended with an error response.
func (c *Collector) WriteError(operation string, httpStatus int, code string) {
	if c == nil {
		return
	}
	c.activitySet().errors.WithLabelValues(operation, strconv.Itoa(httpStatus), code).Inc()
}

// RecordCardEvent counts a lifecycle event.
func (c *Collector) RecordCardEvent(event string) {
	if c == nil {
		return
	}
	c.analytics.cardEvents.WithLabelValues(event).Inc()
}

// ObserveApprovedLimit records a granted limit.
func (c *Collector) ObserveApprovedLimit(amount int64) {
	if c == nil {
		return
	}
	c.analytics.approvedLimit.Observe(float64(amount))
}

// HealthRegistry returns the current health registry.
func (c *Collector) HealthRegistry() *prometheus.Registry {
	return c.healthSet().registry
}

// ActivityRegistry returns the current activity registry.
func (c *Collector) ActivityRegistry() *prometheus.Registry {
	return c.activitySet().registry
}

// AnalyticsRegistry returns the analytics registry.
func (c *Collector) AnalyticsRegistry() *prometheus.Registry {
	return c.analytics.registry
}

func statusValue(httpStatus int) float64 {
	if httpStatus >= http.StatusOK && httpStatus < http.StatusBadRequest {
		return 1
	}
	return 0
}
