package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/credit-service/internal/domain"
)

// MemoryUserRepository keeps users in process memory. Used when no database is
// configured and in tests.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
}

// NewMemoryUserRepository returns an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byID: map[string]domain.User{}, byEmail: map[string]string{}}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return ErrDuplicate
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[user.ID]
	if !ok {
		return ErrNotFound
	}
	user.Email = stored.Email
	user.UpdatedAt = time.Now().UTC()
	r.byID[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// MemoryCreditCardRepository keeps cards in process memory, keyed by owner.
type MemoryCreditCardRepository struct {
	mu     sync.RWMutex
	byUser map[string]domain.CreditCard
}

// NewMemoryCreditCardRepository returns an empty store.
func NewMemoryCreditCardRepository() *MemoryCreditCardRepository {
	return &MemoryCreditCardRepository{byUser: map[string]domain.CreditCard{}}
}

func (r *MemoryCreditCardRepository) Create(_ context.Context, card *domain.CreditCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUser[card.UserID]; exists {
		return ErrDuplicate
	}
	now := time.Now().UTC()
	card.ID = uuid.NewString()
	card.CreatedAt = now
	card.UpdatedAt = now
	r.byUser[card.UserID] = *card
	return nil
}

func (r *MemoryCreditCardRepository) Update(_ context.Context, card *domain.CreditCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byUser[card.UserID]
	if !ok || stored.ID != card.ID {
		return ErrNotFound
	}
	card.UpdatedAt = time.Now().UTC()
	r.byUser[card.UserID] = *card
	return nil
}

func (r *MemoryCreditCardRepository) GetByUserID(_ context.Context, userID string) (*domain.CreditCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, ok := r.byUser[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &card, nil
}

var (
	_ UserRepository       = (*MemoryUserRepository)(nil)
	_ CreditCardRepository = (*MemoryCreditCardRepository)(nil)
)
