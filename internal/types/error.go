package types

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error kinds surfaced by the data access and procedure layers.
var (
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrTooManyRequests  = errors.New("too many requests")
	ErrStoreUnavailable = errors.New("database not available")
	ErrConsistency      = errors.New("consistency fault")
)

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`

	kind error
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Unwrap exposes the error kind to errors.Is.
func (e *CustomError) Unwrap() error {
	return e.kind
}

// NewError builds a CustomError for the given kind with the status and type tag that kind maps to.
func NewError(kind error, message string) *CustomError {
	e := &CustomError{Message: message, kind: kind}
	switch kind {
	case ErrValidation:
		e.Code, e.Type = fiber.StatusBadRequest, "data.validation.input"
	case ErrUnauthorized:
		e.Code, e.Type = fiber.StatusUnauthorized, "auth.credentials"
	case ErrForbidden:
		e.Code, e.Type = fiber.StatusForbidden, "data.authorization.admin"
	case ErrNotFound:
		e.Code, e.Type = fiber.StatusNotFound, "data.notfound"
	case ErrTooManyRequests:
		e.Code, e.Type = fiber.StatusTooManyRequests, "auth.ratelimit"
	case ErrStoreUnavailable:
		e.Code, e.Type = fiber.StatusServiceUnavailable, "data.store.unavailable"
	case ErrConsistency:
		e.Code, e.Type = fiber.StatusInternalServerError, "data.consistency"
	default:
		e.Code, e.Type = fiber.StatusInternalServerError, "unknown"
	}
	return e
}

// CodeName returns the procedure error code name for an HTTP status.
func CodeName(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusTooManyRequests:
		return "TOO_MANY_REQUESTS"
	case fiber.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	}
	return "INTERNAL_SERVER_ERROR"
}
