package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// Error codes returned to API clients.
const (
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeTokenInvalid         = "TOKEN_INVALID"
	CodeUserNotFound         = "USER_NOT_FOUND"
	CodeUserAlreadyExists    = "USER_ALREADY_EXISTS"
	CodeCardAlreadyExists    = "CARD_ALREADY_EXISTS"
	CodeCardNotFound         = "CARD_NOT_FOUND"
	CodeCardInactive         = "CARD_INACTIVE"
	CodeLimitTooSmall        = "LIMIT_TOO_SMALL"
	CodeLimitCannotIncrease  = "LIMIT_CANNOT_INCREASE"
	CodeNotValidated         = "NOT_VALIDATED"
	CodeExternalTimeout      = "EXTERNAL_TIMEOUT"
	CodeExternalServiceError = "EXTERNAL_SERVICE_ERROR"
	CodeTooManyRequests      = "TOO_MANY_REQUESTS"
	CodeDependencyDown       = "DEPENDENCY_UNAVAILABLE"
	CodeNotFound             = "NOT_FOUND"
	CodeConflict             = "CONFLICT"
	CodeHTTPError            = "HTTP_ERROR"
	CodeInternalError        = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "incorrect email or password", http.StatusBadRequest, nil)
}

func NewTokenInvalid() error {
	return NewDomainError(CodeTokenInvalid, "could not validate token", http.StatusForbidden, nil)
}

func NewUserNotFound() error {
	return NewDomainError(CodeUserNotFound, "user not found", http.StatusNotFound, nil)
}

func NewUserAlreadyExists() error {
	return NewDomainError(CodeUserAlreadyExists, "user with this email already exists", http.StatusBadRequest, nil)
}

func NewCardAlreadyExists() error {
	return NewDomainError(CodeCardAlreadyExists, "user already has a credit card", http.StatusBadRequest, nil)
}

func NewCardNotFound() error {
	return NewDomainError(CodeCardNotFound, "credit card does not exist, open one first", http.StatusBadRequest, nil)
}

func NewCardInactive() error {
	return NewDomainError(CodeCardInactive, "credit card is inactive", http.StatusBadRequest, nil)
}

func NewLimitTooSmall(current int64) error {
	return NewDomainError(CodeLimitTooSmall, "requested limit is not greater than the current one", http.StatusBadRequest,
		map[string]any{"current_limit": current})
}

func NewLimitCannotIncrease() error {
	return NewDomainError(CodeLimitCannotIncrease,
		"limit increase is unavailable with the current profile, fill in more details to increase it",
		http.StatusBadRequest, nil)
}

func NewNotValidated() error {
	return NewDomainError(CodeNotValidated, "not validated", http.StatusBadRequest, nil)
}

func NewExternalTimeout(service string, timeout time.Duration) error {
	return &DomainError{
		Code:       CodeExternalTimeout,
		Message:    fmt.Sprintf("service %s unavailable within %s", service, timeout),
		HTTPStatus: http.StatusRequestTimeout,
		Details:    map[string]any{"service": service},
	}
}

func NewExternalServiceError(service, detail string, err error) error {
	return &DomainError{
		Code:       CodeExternalServiceError,
		Message:    fmt.Sprintf("%s error: %s", service, detail),
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"service": service},
		Err:        err,
	}
}

func NewTooManyRequests(retryAfter time.Duration) error {
	return NewDomainError(CodeTooManyRequests, "too many requests", http.StatusTooManyRequests,
		map[string]any{"retry_after_seconds": int(retryAfter.Seconds())})
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := CodeHTTPError
		if fiberErr.Code == http.StatusNotFound {
			code = CodeNotFound
		}
		return NewDomainError(code, fiberErr.Message, fiberErr.Code, nil)
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

func MapError(err error) error {
	return ToDomainError(err)
}

// HasCode reports whether err carries the given domain code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
