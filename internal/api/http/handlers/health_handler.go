package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/credit-service/internal/health"
	"github.com/spec-kit/credit-service/internal/observability"
	apperrors "github.com/spec-kit/credit-service/pkg/util"
)

const (
	metricsHealth    = "health"
	metricsActivity  = "activity"
	metricsAnalytics = "analytics"
)

// HealthChecker aggregates dependency probes.
type HealthChecker interface {
	Inspect(ctx context.Context, severity health.Severity) health.Report
	MinorStatus(ctx context.Context) bool
}

// HealthHandler responds to liveness, readiness and metrics probes.
type HealthHandler struct {
	checker HealthChecker
	metrics *observability.Collector
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(checker HealthChecker, metrics *observability.Collector) *HealthHandler {
	return &HealthHandler{checker: checker, metrics: metrics}
}

type componentStatus struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Severity   string  `json:"severity"`
	Up         bool    `json:"up"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// Up handles GET /healthz/up.
func (h *HealthHandler) Up(c *fiber.Ctx) error {
	h.metrics.WriteUpStatus(http.StatusOK)
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "up"}})
}

// Ready handles GET /healthz/ready. Only MAJOR components decide readiness.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	report := h.checker.Inspect(c.UserContext(), health.SeverityMajor)

	components := make([]componentStatus, 0, len(report.Components))
	for _, cr := range report.Components {
		status := componentStatus{
			Name:       cr.Component.Name,
			Type:       cr.Component.Type,
			Severity:   cr.Component.Severity.String(),
			Up:         cr.Result.Up,
			DurationMS: float64(cr.Result.Duration.Microseconds()) / 1000,
		}
		if cr.Result.Err != nil {
			status.Error = cr.Result.Err.Error()
		}
		components = append(components, status)
	}

	if report.Up {
		h.metrics.WriteReadyStatus(http.StatusOK)
		return c.JSON(fiber.Map{"data": fiber.Map{"status": "ready", "components": components}})
	}

	h.metrics.WriteReadyStatus(http.StatusServiceUnavailable)
	return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    apperrors.CodeDependencyDown,
			"message": "one or more dependencies unavailable",
			"details": fiber.Map{"components": components},
		},
	})
}

// Metrics handles GET /healthz/metrics?type=health|activity|analytics.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	var registry *prometheus.Registry
	switch c.Query("type") {
	case metricsHealth:
		h.checker.MinorStatus(c.UserContext())
		registry = h.metrics.HealthRegistry()
	case metricsActivity:
		registry = h.metrics.ActivityRegistry()
	case metricsAnalytics:
		registry = h.metrics.AnalyticsRegistry()
	default:
		return invalidMetricsType(metricsHealth, metricsActivity, metricsAnalytics)
	}
	return adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))(c)
}

// ResetMetrics handles DELETE /healthz/metrics. Without a type both health and
// activity registries are reset.
func (h *HealthHandler) ResetMetrics(c *fiber.Ctx) error {
	switch c.Query("type") {
	case "":
		h.metrics.NewActivityMetrics()
		h.metrics.NewHealthMetrics()
	case metricsHealth:
		h.metrics.NewHealthMetrics()
	case metricsActivity:
		h.metrics.NewActivityMetrics()
	default:
		return invalidMetricsType(metricsHealth, metricsActivity)
	}
	return c.SendStatus(http.StatusOK)
}

func invalidMetricsType(allowed ...string) error {
	return apperrors.NewValidationError("unsupported metrics type", map[string]any{"allowed": allowed})
}
