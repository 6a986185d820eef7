package repository

import (
	"context"

	"github.com/spec-kit/credit-service/internal/domain"
)

// CreditCardRepository encapsulates card persistence. A user owns at most one card.
type CreditCardRepository interface {
	Create(ctx context.Context, card *domain.CreditCard) error
	Update(ctx context.Context, card *domain.CreditCard) error
	GetByUserID(ctx context.Context, userID string) (*domain.CreditCard, error)
}

type creditCardRepository struct {
	db DBTX
}

// NewCreditCardRepository instantiates repository.
func NewCreditCardRepository(db DBTX) CreditCardRepository {
	return &creditCardRepository{db: db}
}

func (r *creditCardRepository) Create(ctx context.Context, card *domain.CreditCard) error {
	const query = `
        INSERT INTO credit_cards (user_id, credit_limit, balance, status, exp_date)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		card.UserID,
		card.Limit,
		card.Balance,
		string(card.Status),
		card.ExpDate,
	).Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)
	return translate(err)
}

func (r *creditCardRepository) Update(ctx context.Context, card *domain.CreditCard) error {
	const query = `
        UPDATE credit_cards SET credit_limit=$1, balance=$2, status=$3, exp_date=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		card.Limit,
		card.Balance,
		string(card.Status),
		card.ExpDate,
		card.ID,
	).Scan(&card.UpdatedAt)
	return translate(err)
}

func (r *creditCardRepository) GetByUserID(ctx context.Context, userID string) (*domain.CreditCard, error) {
	const query = `
        SELECT id, user_id, credit_limit, balance, status, exp_date, created_at, updated_at
        FROM credit_cards WHERE user_id=$1`

	var (
		card   domain.CreditCard
		status string
	)
	if err := r.db.QueryRow(ctx, query, userID).Scan(
		&card.ID,
		&card.UserID,
		&card.Limit,
		&card.Balance,
		&status,
		&card.ExpDate,
		&card.CreatedAt,
		&card.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	card.Status = domain.CardStatus(status)
	return &card, nil
}
