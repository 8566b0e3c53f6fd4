package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeDuplicate    ErrorCode = "DUPLICATE_REQUEST"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUserNotFound       = NewError(ErrCodeNotFound, "user not found")
	ErrAgreementNotFound  = NewError(ErrCodeNotFound, "agreement not found")
	ErrApartmentNotFound  = NewError(ErrCodeNotFound, "apartment not found")
	ErrCouponNotFound     = NewError(ErrCodeNotFound, "coupon not found")
	ErrSessionNotFound    = NewError(ErrCodeNotFound, "session not found")
	ErrDuplicateRequest   = NewError(ErrCodeDuplicate, "an agreement request already exists for this user")
	ErrAgreementFinalized = NewError(ErrCodeConflict, "agreement has already been rejected")
	ErrDuplicateCoupon    = NewError(ErrCodeConflict, "coupon code already exists")
	ErrAdminDemotion      = NewError(ErrCodeConflict, "admins cannot be demoted")
	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrForbidden          = NewError(ErrCodeForbidden, "forbidden")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
	ErrRateLimited        = NewError(ErrCodeRateLimited, "too many requests")
)

// CodeOf returns the code of the outermost domain error in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) && dErr.Code != "" {
		return dErr.Code
	}
	return ErrCodeInternal
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
