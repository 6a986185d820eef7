package health

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrUnsupportedSeverity is returned when registering a component with an unknown severity.
var ErrUnsupportedSeverity = errors.New("unsupported component severity")

// Aggregator fans out registered checkers and ANDs their results.
type Aggregator struct {
	mu        sync.RWMutex
	minor     []Component
	major     []Component
	callbacks []Callback
	timeout   time.Duration
	logger    *zap.Logger
}

// NewAggregator builds an aggregator. A non-positive timeout disables the per-check deadline.
func NewAggregator(timeout time.Duration, logger *zap.Logger, callbacks ...Callback) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		callbacks: callbacks,
		timeout:   timeout,
		logger:    logger,
	}
}

// AddCallback registers an observer invoked once per component per check.
func (a *Aggregator) AddCallback(cb Callback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = append(a.callbacks, cb)
}

// AddComponent registers a component. Duplicates are kept.
func (a *Aggregator) AddComponent(c Component) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch c.Severity {
	case SeverityMinor:
		a.minor = append(a.minor, c)
	case SeverityMajor:
		a.major = append(a.major, c)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedSeverity, c.Severity)
	}
	return nil
}

// AddComponents registers several components, stopping at the first invalid one.
func (a *Aggregator) AddComponents(components ...Component) error {
	for _, c := range components {
		if err := a.AddComponent(c); err != nil {
			return err
		}
	}
	return nil
}

// MajorStatus reports whether every MAJOR component is up. Drives readiness.
func (a *Aggregator) MajorStatus(ctx context.Context) bool {
	return a.Check(ctx, SeverityMajor)
}

// MinorStatus reports whether every MINOR component is up. Used for metrics only.
func (a *Aggregator) MinorStatus(ctx context.Context) bool {
	return a.Check(ctx, SeverityMinor)
}

// Check runs every component of the given severity and returns the AND of their results.
func (a *Aggregator) Check(ctx context.Context, severity Severity) bool {
	return a.Inspect(ctx, severity).Up
}

// Inspect runs every component of the given severity concurrently, notifies callbacks
// and returns per-component results. An empty set is up.
func (a *Aggregator) Inspect(ctx context.Context, severity Severity) Report {
	a.mu.RLock()
	var components []Component
	switch severity {
	case SeverityMinor:
		components = append(components, a.minor...)
	case SeverityMajor:
		components = append(components, a.major...)
	}
	callbacks := append([]Callback(nil), a.callbacks...)
	a.mu.RUnlock()

	results := make([]Result, len(components))
	var wg sync.WaitGroup
	for i := range components {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = a.run(ctx, components[i])
		}(i)
	}
	wg.Wait()

	report := Report{Up: true, Components: make([]ComponentReport, len(components))}
	for i, c := range components {
		for _, cb := range callbacks {
			a.notify(cb, c, results[i])
		}
		report.Components[i] = ComponentReport{Component: c, Result: results[i]}
		if !results[i].Up {
			report.Up = false
		}
	}
	return report
}

// run executes one checker under the per-check deadline. A checker that ignores its
// context is abandoned once the deadline passes.
func (a *Aggregator) run(ctx context.Context, c Component) Result {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	done := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Result{Err: fmt.Errorf("checker panic: %v", r)}
			}
		}()
		if c.Checker == nil {
			done <- Result{Err: errors.New("checker not configured")}
			return
		}
		up, err := c.Checker(ctx)
		done <- Result{Up: up && err == nil, Err: err}
	}()

	var res Result
	select {
	case res = <-done:
	case <-ctx.Done():
		res = Result{Err: ctx.Err()}
	}
	res.Duration = time.Since(start)
	return res
}

func (a *Aggregator) notify(cb Callback, c Component, res Result) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("health callback panic",
				zap.String("component", c.Name),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
	}()
	cb(c, res)
}
