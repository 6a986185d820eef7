package service

import (
	"context"

	"github.com/spec-kit/credit-service/internal/domain"
	"github.com/spec-kit/credit-service/internal/events"
	"github.com/spec-kit/credit-service/internal/repository"
)

// PhotoValidator submits a photo to the external verification service.
type PhotoValidator interface {
	Validate(ctx context.Context, photo domain.Photo, kind domain.PhotoKind) (bool, error)
}

// UserService manages profile data and verification flags.
type UserService struct {
	users      repository.UserRepository
	photos     PhotoValidator
	dispatcher events.Dispatcher
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, photos PhotoValidator, dispatcher events.Dispatcher) *UserService {
	return &UserService{users: users, photos: photos, dispatcher: dispatcher}
}

// UpdateProfile applies a partial update to the user.
func (s *UserService) UpdateProfile(ctx context.Context, user *domain.User, patch domain.ProfilePatch) error {
	patch.Apply(user)
	return s.users.Update(ctx, user)
}

// Verify validates the photo and stores the outcome in the matching flag. A
// rejected photo clears a previously granted flag. Service failures leave the
// user untouched.
func (s *UserService) Verify(ctx context.Context, user *domain.User, photo domain.Photo, kind domain.PhotoKind) (bool, error) {
	ok, err := s.photos.Validate(ctx, photo, kind)
	if err != nil {
		return false, err
	}

	switch kind {
	case domain.PhotoKindDocument:
		user.DocumentVerified = ok
	case domain.PhotoKindFace:
		user.FaceVerified = ok
	}
	if err := s.users.Update(ctx, user); err != nil {
		return false, err
	}

	publish(ctx, s.dispatcher, events.New(events.EventVerificationUpdated, user.ID,
		events.VerificationUpdatedPayload{Kind: kind, Verified: ok}))
	return ok, nil
}
