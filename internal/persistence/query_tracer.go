package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

const dbTypePostgres = "postgresql"

// DBTimingRecorder receives one observation per executed statement.
type DBTimingRecorder interface {
	WriteDBTiming(operation, dbType string, failed bool, duration time.Duration)
}

type traceKey struct{}

type traceStart struct {
	operation string
	at        time.Time
}

// QueryTracer implements pgx.QueryTracer and reports statement latency.
type QueryTracer struct {
	recorder DBTimingRecorder
}

// NewQueryTracer builds a tracer for the given recorder.
func NewQueryTracer(recorder DBTimingRecorder) *QueryTracer {
	return &QueryTracer{recorder: recorder}
}

func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, traceStart{operation: statementOperation(data.SQL), at: time.Now()})
}

func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(traceKey{}).(traceStart)
	if !ok {
		return
	}
	t.recorder.WriteDBTiming(start.operation, dbTypePostgres, data.Err != nil, time.Since(start.at))
}

// statementOperation returns the leading SQL keyword, upper-cased.
func statementOperation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(fields[0])
}
