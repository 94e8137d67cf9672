package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an operational failure: one raised intentionally by business logic
// with a predetermined status code and a message that is safe to show to the
// client. Anything that is not an *Error is treated as an unexpected defect
// by the error normalizer.
type Error struct {
	Code    int
	Status  string // "fail" for 4xx, "error" for 5xx
	Message string
	Err     error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an operational error with the given client-facing message and
// HTTP status code.
func New(message string, code int) *Error {
	return &Error{Code: code, Status: statusFor(code), Message: message}
}

// Wrap attaches a cause to an operational error without changing what the
// client sees.
func Wrap(message string, code int, err error) *Error {
	e := New(message, code)
	e.Err = err
	return e
}

func statusFor(code int) string {
	if code >= http.StatusInternalServerError {
		return "error"
	}
	return "fail"
}

// As extracts an operational error from err, or returns nil when err is an
// unexpected defect.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// Common authentication failures, shared between the auth gate and the
// error normalizer.
var (
	ErrNotLoggedIn      = New("You are not logged in. Please log in for access", http.StatusUnauthorized)
	ErrUserGone         = New("The user belonging to this token no longer exists", http.StatusUnauthorized)
	ErrStalePassword    = New("This user recently changed their password. Please log in again.", http.StatusUnauthorized)
	ErrBadCredentials   = New("Incorrect email or password", http.StatusUnauthorized)
	ErrForbidden        = New("You do not have permission to perform this action", http.StatusForbidden)
	ErrTokenInvalid     = New("Invalid login token. Please log in again", http.StatusUnauthorized)
	ErrTokenExpired     = New("Login token expired. Please log in again", http.StatusUnauthorized)
	ErrResetTokenStale  = New("token is invalid or expired", http.StatusBadRequest)
	ErrResetMailFailure = New("There was an error sending the email. Try again later", http.StatusInternalServerError)
)
