package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/credit-service/internal/auth"
	"github.com/spec-kit/credit-service/internal/config"
	"github.com/spec-kit/credit-service/internal/events"
	"github.com/spec-kit/credit-service/internal/repository"
	apperrors "github.com/spec-kit/credit-service/pkg/util"
)

func newAuthService() (*AuthService, *auth.TokenManager, *eventLog) {
	tokens := auth.NewTokenManager("secret", 10)
	log := &eventLog{}
	svc := NewAuthService(config.AuthConfig{BcryptCost: bcrypt.MinCost}, AuthDependencies{
		UserRepo:   repository.NewMemoryUserRepository(),
		Tokens:     tokens,
		Dispatcher: newEventDispatcher(log),
	})
	return svc, tokens, log
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens, log := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, " User@Example.com ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	assert.NotEqual(t, "pw", user.PasswordHash)
	assert.Equal(t, []events.EventType{events.EventUserRegistered}, log.types)

	token, err := svc.Login(ctx, "user@example.com", "pw")
	require.NoError(t, err)
	assert.False(t, token.ExpiresAt.IsZero())

	claims, err := tokens.ParseToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "user@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "USER@example.com", "other")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUserAlreadyExists))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()
	_, err := svc.Register(ctx, "user@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "user@example.com", "wrong")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))

	_, err = svc.Login(ctx, "nobody@example.com", "pw")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))
}
