package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/credit-service/internal/events"
)

type analyticsStub struct {
	events []string
	limits []int64
}

func (a *analyticsStub) RecordCardEvent(event string)      { a.events = append(a.events, event) }
func (a *analyticsStub) ObserveApprovedLimit(amount int64) { a.limits = append(a.limits, amount) }

func TestAuditServiceRecordsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher(nil)
	stub := &analyticsStub{}
	NewAuditService(dispatcher, stub, zap.New(core)).RegisterHandlers()

	ctx := context.Background()
	dispatcher.Publish(ctx, events.New(events.EventCardOpened, "u1", events.CardOpenedPayload{Approved: 20_000_00}))
	dispatcher.Publish(ctx, events.New(events.EventCardLimitIncreased, "u1", events.CardLimitIncreasedPayload{NewLimit: 30_000_00}))
	dispatcher.Publish(ctx, events.New(events.EventCardClosed, "u1", events.CardClosedPayload{}))

	assert.Equal(t, []string{"card_opened", "card_limit_increased", "card_closed"}, stub.events)
	assert.Equal(t, []int64{20_000_00, 30_000_00}, stub.limits)
	assert.Equal(t, 3, logs.FilterMessage("audit event").Len())
}
