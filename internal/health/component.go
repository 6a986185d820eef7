// Package health runs dependency checks concurrently and aggregates their outcome
// for liveness and readiness probes.
package health

import (
	"context"
	"fmt"
	"time"
)

// Severity classifies how a dependency outage affects the service.
type Severity int

const (
	// SeverityMinor outages are recorded but do not fail readiness.
	SeverityMinor Severity = iota + 1
	// SeverityMajor outages fail readiness.
	SeverityMajor
)

func (s Severity) String() string {
	switch s {
	case SeverityMinor:
		return "minor"
	case SeverityMajor:
		return "major"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Checker reports whether one dependency is reachable. It should honour ctx.
type Checker func(ctx context.Context) (bool, error)

// Component is a registered dependency.
type Component struct {
	Name     string
	Type     string
	Severity Severity
	Checker  Checker
}

// Result is the outcome of one checker run.
type Result struct {
	Up       bool
	Err      error
	Duration time.Duration
}

// ComponentReport pairs a component with its result.
type ComponentReport struct {
	Component Component
	Result    Result
}

// Report is the aggregated outcome of a check cycle.
type Report struct {
	Up         bool
	Components []ComponentReport
}

// Callback observes one component result per check cycle.
type Callback func(Component, Result)
