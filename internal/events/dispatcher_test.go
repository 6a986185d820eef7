package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPublishReachesSubscribersDespiteFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	var got []string
	d.Subscribe(EventCardOpened, func(context.Context, Event) error { return errors.New("sink down") })
	d.Subscribe(EventCardOpened, func(context.Context, Event) error { panic("bad handler") })
	d.Subscribe(EventCardOpened, func(_ context.Context, e Event) error {
		got = append(got, e.UserID)
		return nil
	})
	d.Subscribe(EventCardClosed, func(_ context.Context, e Event) error {
		got = append(got, "closed")
		return nil
	})

	d.Publish(context.Background(), New(EventCardOpened, "u1", CardOpenedPayload{Approved: 100}))

	assert.Equal(t, []string{"u1"}, got)
	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("event handler panic").Len())
}

func TestNewStampsEvent(t *testing.T) {
	e := New(EventUserRegistered, "u1", nil)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, EventUserRegistered, e.Type)
}
