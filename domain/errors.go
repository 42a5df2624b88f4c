package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrCodeInvalid             ErrorCode = "INVALID"
	ErrCodeConflict            ErrorCode = "CONFLICT"
	ErrCodeDuplicateSubmission ErrorCode = "DUPLICATE_SUBMISSION"
	ErrCodeInvalidState        ErrorCode = "INVALID_STATE"
	ErrCodeForbidden           ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal            ErrorCode = "INTERNAL"
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

// Is matches domain errors by code and message so sentinel comparisons
// survive wrapping with WrapError.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf builds a domain error with a formatted message.
func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
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
	ErrUserNotFound         = NewError(ErrCodeNotFound, "user not found")
	ErrOrganizationNotFound = NewError(ErrCodeNotFound, "organization not found")
	ErrRoleNotFound         = NewError(ErrCodeNotFound, "role not found")
	ErrTaskNotFound         = NewError(ErrCodeNotFound, "task not found")
	ErrSubmissionNotFound   = NewError(ErrCodeNotFound, "submission not found")
	ErrSessionNotFound      = NewError(ErrCodeNotFound, "session not found")

	ErrUsernameTaken       = NewError(ErrCodeConflict, "username already exists")
	ErrOrgNameTaken        = NewError(ErrCodeConflict, "organization name taken")
	ErrAlreadyOwnsOrg      = NewError(ErrCodeConflict, "user already owns an organization")
	ErrAlreadyMember       = NewError(ErrCodeConflict, "user already belongs to an organization")
	ErrDuplicateSubmission = NewError(ErrCodeDuplicateSubmission, "task already submitted by this user")

	ErrSubmissionNotPending = NewError(ErrCodeInvalidState, "submission is not pending")
	ErrTaskNotOpen          = NewError(ErrCodeInvalidState, "task is not open")
	ErrOwnerCannotLeave     = NewError(ErrCodeInvalidState, "owner must transfer ownership before leaving")
	ErrXPOverflow           = NewError(ErrCodeInvalidState, "xp total would overflow")

	ErrForbidden          = NewError(ErrCodeForbidden, "forbidden")
	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "invalid credentials")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
