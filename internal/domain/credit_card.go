package domain

import "time"

// CardStatus represents lifecycle states for a credit card.
type CardStatus string

const (
	CardStatusActive CardStatus = "ACTIVE"
	CardStatusClosed CardStatus = "CLOSED"
)

// CreditCard is the aggregate for an issued card. Amounts are minor currency units.
type CreditCard struct {
	ID        string
	UserID    string
	Limit     int64
	Balance   int64
	Status    CardStatus
	ExpDate   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the card can still be used.
func (c *CreditCard) Active() bool {
	return c.Status == CardStatusActive
}

// SetLimit moves the limit and shifts the balance by the same delta.
func (c *CreditCard) SetLimit(limit int64) {
	diff := limit - c.Limit
	c.Limit = limit
	c.Balance += diff
}

// Close marks the card closed. The record is retained.
func (c *CreditCard) Close() {
	c.Status = CardStatusClosed
}
