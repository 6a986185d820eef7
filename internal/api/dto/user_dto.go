package dto

import (
	"time"

	"github.com/spec-kit/credit-service/internal/domain"
)

const dateLayout = "2006-01-02"

// LoginForm is the OAuth2 password-grant form.
type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// TokenResponse is returned by the token endpoint without the data envelope.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MessageResponse carries a short textual outcome.
type MessageResponse struct {
	Detail string `json:"detail"`
}

// UserResponse is the public view of a card holder.
type UserResponse struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	FullName       *string `json:"full_name"`
	Income         *int64  `json:"income"`
	AnotherLoans   *bool   `json:"another_loans"`
	BirthDate      *string `json:"birth_date"`
	Sex            *string `json:"sex"`
	StatusDocument bool    `json:"status_document"`
	StatusFace     bool    `json:"status_face"`
}

// NewTokenResponse maps an issued token.
func NewTokenResponse(token domain.AccessToken) TokenResponse {
	return TokenResponse{AccessToken: token.Value, TokenType: domain.TokenType, ExpiresAt: token.ExpiresAt}
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	resp := UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		Income:         u.Income,
		AnotherLoans:   u.AnotherLoans,
		StatusDocument: u.DocumentVerified,
		StatusFace:     u.FaceVerified,
	}
	if u.BirthDate != nil {
		d := u.BirthDate.Format(dateLayout)
		resp.BirthDate = &d
	}
	if u.Sex != nil {
		s := string(*u.Sex)
		resp.Sex = &s
	}
	return resp
}
