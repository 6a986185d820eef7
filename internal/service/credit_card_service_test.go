package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/credit-service/internal/domain"
	"github.com/spec-kit/credit-service/internal/events"
	"github.com/spec-kit/credit-service/internal/repository"
	apperrors "github.com/spec-kit/credit-service/pkg/util"
)

type eventLog struct {
	types []events.EventType
}

func newEventDispatcher(log *eventLog) events.Dispatcher {
	d := events.NewInMemoryDispatcher(nil)
	for _, et := range events.All {
		d.Subscribe(et, func(_ context.Context, e events.Event) error {
			log.types = append(log.types, e.Type)
			return nil
		})
	}
	return d
}

func newCardService(t *testing.T) (*CreditCardService, *repository.MemoryCreditCardRepository, *eventLog) {
	t.Helper()
	cards := repository.NewMemoryCreditCardRepository()
	log := &eventLog{}
	svc := NewCreditCardService(CreditCardDependencies{
		CardRepo:   cards,
		Policy:     fixedPolicy(),
		Dispatcher: newEventDispatcher(log),
		ExpYears:   5,
		Now:        func() time.Time { return policyNow },
	})
	return svc, cards, log
}

func TestOpenCard(t *testing.T) {
	svc, _, log := newCardService(t)
	ctx := context.Background()
	user := &domain.User{ID: "u1"}

	card, err := svc.Open(ctx, user, 10_000_00)
	require.NoError(t, err)
	assert.Equal(t, testDefaultLimit, card.Limit)
	assert.Equal(t, card.Limit, card.Balance)
	assert.True(t, card.Active())
	assert.Equal(t, time.Date(2029, time.June, 15, 0, 0, 0, 0, time.UTC), card.ExpDate)
	assert.Equal(t, []events.EventType{events.EventCardOpened}, log.types)

	_, err = svc.Open(ctx, user, 10_000_00)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCardAlreadyExists))
}

func TestOpenCardRejectsNonPositiveLimit(t *testing.T) {
	svc, _, _ := newCardService(t)
	_, err := svc.Open(context.Background(), &domain.User{ID: "u1"}, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestClosedCardBlocksReopening(t *testing.T) {
	svc, _, _ := newCardService(t)
	ctx := context.Background()
	user := &domain.User{ID: "u1"}

	_, err := svc.Open(ctx, user, 10_000_00)
	require.NoError(t, err)
	_, err = svc.Close(ctx, user)
	require.NoError(t, err)

	_, err = svc.Open(ctx, user, 10_000_00)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCardAlreadyExists))
}

func TestIncreaseLimitFlow(t *testing.T) {
	svc, cards, log := newCardService(t)
	ctx := context.Background()
	user := &domain.User{ID: "u1"}

	_, err := svc.IncreaseLimit(ctx, user, 50_000_00)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCardNotFound))

	_, err = svc.Open(ctx, user, largeRequest)
	require.NoError(t, err)

	_, err = svc.IncreaseLimit(ctx, user, testDefaultLimit)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeLimitTooSmall))

	_, err = svc.IncreaseLimit(ctx, user, largeRequest)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeLimitCannotIncrease))

	user.Income = ptr[int64](300_000_00)
	card, err := svc.IncreaseLimit(ctx, user, 50_000_00)
	require.NoError(t, err)
	assert.Equal(t, int64(50_000_00), card.Limit)
	assert.Equal(t, int64(50_000_00), card.Balance)

	stored, err := cards.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(50_000_00), stored.Limit)

	assert.Equal(t, []events.EventType{events.EventCardOpened, events.EventCardLimitIncreased}, log.types)
}

func TestIncreaseLimitKeepsSpentAmount(t *testing.T) {
	svc, cards, _ := newCardService(t)
	ctx := context.Background()
	user := &domain.User{ID: "u1"}

	card, err := svc.Open(ctx, user, largeRequest)
	require.NoError(t, err)
	card.Balance -= 5_000_00
	require.NoError(t, cards.Update(ctx, card))

	user.DocumentVerified = true
	card, err = svc.IncreaseLimit(ctx, user, largeRequest)
	require.NoError(t, err)
	assert.Equal(t, int64(25_000_00), card.Limit)
	assert.Equal(t, int64(20_000_00), card.Balance)
}

func TestIncreaseLimitOnClosedCard(t *testing.T) {
	svc, _, _ := newCardService(t)
	ctx := context.Background()
	user := &domain.User{ID: "u1"}

	_, err := svc.Open(ctx, user, largeRequest)
	require.NoError(t, err)
	_, err = svc.Close(ctx, user)
	require.NoError(t, err)

	_, err = svc.IncreaseLimit(ctx, user, largeRequest)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCardInactive))
}

func TestCloseCard(t *testing.T) {
	svc, _, log := newCardService(t)
	ctx := context.Background()
	user := &domain.User{ID: "u1"}

	_, err := svc.Close(ctx, user)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCardNotFound))

	_, err = svc.Open(ctx, user, largeRequest)
	require.NoError(t, err)

	card, err := svc.Close(ctx, user)
	require.NoError(t, err)
	assert.False(t, card.Active())

	card, err = svc.Close(ctx, user)
	require.NoError(t, err)
	assert.False(t, card.Active())

	current, err := svc.Current(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, domain.CardStatusClosed, current.Status)
	assert.Equal(t, []events.EventType{events.EventCardOpened, events.EventCardClosed}, log.types)
}

type failingCardRepo struct {
	repository.CreditCardRepository
}

func (failingCardRepo) GetByUserID(context.Context, string) (*domain.CreditCard, error) {
	return nil, errors.New("connection reset")
}

func TestStorageErrorsPropagate(t *testing.T) {
	svc := NewCreditCardService(CreditCardDependencies{CardRepo: failingCardRepo{}, Policy: fixedPolicy(), ExpYears: 5})

	_, err := svc.Open(context.Background(), &domain.User{ID: "u1"}, largeRequest)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternalError, apperrors.ToDomainError(err).Code)
}
