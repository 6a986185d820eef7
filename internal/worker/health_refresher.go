package worker

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// MinorProber refreshes the MINOR dependency gauges.
type MinorProber interface {
	MinorStatus(ctx context.Context) bool
}

// HealthRefresher probes MINOR components on a schedule so their gauges stay
// current between metrics scrapes.
type HealthRefresher struct {
	cron   *cron.Cron
	prober MinorProber
	logger *zap.Logger
}

// NewHealthRefresher validates the schedule and registers the probe job.
func NewHealthRefresher(prober MinorProber, schedule string, logger *zap.Logger) (*HealthRefresher, error) {
	cl := cronLogger{logger.Sugar()}
	r := &HealthRefresher{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		prober: prober,
		logger: logger,
	}
	if _, err := r.cron.AddFunc(schedule, r.refresh); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *HealthRefresher) refresh() {
	up := r.prober.MinorStatus(context.Background())
	r.logger.Debug("minor components refreshed", zap.Bool("up", up))
}

// Start begins the schedule in its own goroutine.
func (r *HealthRefresher) Start() {
	r.cron.Start()
}

// Stop halts scheduling and waits for a running probe or ctx, whichever ends first.
func (r *HealthRefresher) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
