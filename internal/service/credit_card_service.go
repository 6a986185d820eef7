package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/credit-service/internal/domain"
	"github.com/spec-kit/credit-service/internal/events"
	"github.com/spec-kit/credit-service/internal/repository"
	apperrors "github.com/spec-kit/credit-service/pkg/util"
)

// CreditCardService coordinates card issuance and limit changes.
type CreditCardService struct {
	cards      repository.CreditCardRepository
	policy     *LimitPolicy
	dispatcher events.Dispatcher
	logger     *zap.Logger
	expYears   int
	now        func() time.Time
}

// CreditCardDependencies bundles collaborators for the card service.
type CreditCardDependencies struct {
	CardRepo   repository.CreditCardRepository
	Policy     *LimitPolicy
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	ExpYears   int
	Now        func() time.Time
}

// NewCreditCardService builds the service.
func NewCreditCardService(deps CreditCardDependencies) *CreditCardService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreditCardService{
		cards:      deps.CardRepo,
		policy:     deps.Policy,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		expYears:   deps.ExpYears,
		now:        now,
	}
}

// Open issues the user's card with the limit the policy approves. A user gets at
// most one card, closed or not.
func (s *CreditCardService) Open(ctx context.Context, user *domain.User, requested int64) (*domain.CreditCard, error) {
	if requested <= 0 {
		return nil, invalidLimit()
	}
	if _, err := s.cards.GetByUserID(ctx, user.ID); err == nil {
		return nil, apperrors.NewCardAlreadyExists()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	limit := s.policy.Approve(requested, user.Profile())
	card := &domain.CreditCard{
		UserID:  user.ID,
		Limit:   limit,
		Balance: limit,
		Status:  domain.CardStatusActive,
		ExpDate: s.expiration(),
	}
	if err := s.cards.Create(ctx, card); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewCardAlreadyExists()
		}
		return nil, err
	}

	s.logger.Info("credit card opened",
		zap.String("user_id", user.ID),
		zap.Int64("requested", requested),
		zap.Int64("approved", limit))
	publish(ctx, s.dispatcher, events.New(events.EventCardOpened, user.ID,
		events.CardOpenedPayload{CardID: card.ID, Requested: requested, Approved: limit}))
	return card, nil
}

// Current returns the user's card.
func (s *CreditCardService) Current(ctx context.Context, user *domain.User) (*domain.CreditCard, error) {
	card, err := s.cards.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewCardNotFound()
		}
		return nil, err
	}
	return card, nil
}

// IncreaseLimit raises the card limit to what the policy approves for requested.
func (s *CreditCardService) IncreaseLimit(ctx context.Context, user *domain.User, requested int64) (*domain.CreditCard, error) {
	if requested <= 0 {
		return nil, invalidLimit()
	}
	card, err := s.Current(ctx, user)
	if err != nil {
		return nil, err
	}
	if !card.Active() {
		return nil, apperrors.NewCardInactive()
	}
	if card.Limit >= requested {
		return nil, apperrors.NewLimitTooSmall(card.Limit)
	}

	approved := s.policy.Approve(requested, user.Profile())
	if card.Limit >= approved {
		return nil, apperrors.NewLimitCannotIncrease()
	}

	old := card.Limit
	card.SetLimit(approved)
	if err := s.cards.Update(ctx, card); err != nil {
		return nil, err
	}

	s.logger.Info("credit card limit increased",
		zap.String("user_id", user.ID),
		zap.Int64("old_limit", old),
		zap.Int64("new_limit", approved))
	publish(ctx, s.dispatcher, events.New(events.EventCardLimitIncreased, user.ID,
		events.CardLimitIncreasedPayload{CardID: card.ID, OldLimit: old, NewLimit: approved}))
	return card, nil
}

// Close deactivates the card. Closing a closed card is a no-op.
func (s *CreditCardService) Close(ctx context.Context, user *domain.User) (*domain.CreditCard, error) {
	card, err := s.Current(ctx, user)
	if err != nil {
		return nil, err
	}
	if !card.Active() {
		return card, nil
	}

	card.Close()
	if err := s.cards.Update(ctx, card); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.New(events.EventCardClosed, user.ID, events.CardClosedPayload{CardID: card.ID}))
	return card, nil
}

func (s *CreditCardService) expiration() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year()+s.expYears, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func invalidLimit() error {
	return apperrors.NewValidationError("limit must be a positive integer", map[string]any{"field": "limit"})
}
