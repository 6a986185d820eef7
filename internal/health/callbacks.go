package health

import (
	"go.uber.org/zap"
)

// ComponentRecorder stores per-component availability.
type ComponentRecorder interface {
	WriteReadyComponentStatus(component, componentType, severity string, up bool)
}

// MetricsCallback exports each result as a component availability gauge.
func MetricsCallback(recorder ComponentRecorder) Callback {
	return func(c Component, res Result) {
		recorder.WriteReadyComponentStatus(c.Name, c.Type, c.Severity.String(), res.Up)
	}
}

// LogCallback logs every component that is down.
func LogCallback(logger *zap.Logger) Callback {
	return func(c Component, res Result) {
		if res.Up {
			return
		}
		fields := []zap.Field{
			zap.String("severity", c.Severity.String()),
			zap.String("component_type", c.Type),
			zap.String("component", c.Name),
			zap.Duration("duration", res.Duration),
		}
		if res.Err != nil {
			fields = append(fields, zap.Error(res.Err))
		}
		logger.Error("external component unavailable", fields...)
	}
}
