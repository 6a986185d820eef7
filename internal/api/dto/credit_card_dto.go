package dto

import "github.com/spec-kit/credit-service/internal/domain"

// CreditCardResponse is the public view of a card.
type CreditCardResponse struct {
	Limit   int64  `json:"limit"`
	Balance int64  `json:"balance"`
	Active  bool   `json:"active"`
	ExpDate string `json:"exp_date"`
}

// NewCreditCardResponse maps a domain card.
func NewCreditCardResponse(c *domain.CreditCard) CreditCardResponse {
	return CreditCardResponse{
		Limit:   c.Limit,
		Balance: c.Balance,
		Active:  c.Active(),
		ExpDate: c.ExpDate.Format(dateLayout),
	}
}
