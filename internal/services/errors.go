package services

import (
	"errors"
)

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorForbidden    ErrorCode = "forbidden"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorConflict     ErrorCode = "conflict"
	ErrorUnauthorized ErrorCode = "unauthorized"
)

var (
	ErrInvalidSession     = errors.New("invalid session")
	ErrInvalidCategory    = errors.New("invalid test type")
	ErrInvalidScore       = errors.New("score out of range")
	ErrNoActiveSession    = errors.New("no active test session")
	ErrSessionNotFound    = errors.New("test session not found")
	ErrSessionCompleted   = errors.New("test session already completed")
	ErrIncompleteSession  = errors.New("not all tests have been completed")
	ErrAccessDenied       = errors.New("report not found or access denied")
	ErrReportNotReady     = errors.New("assessment not completed yet")
	ErrDuplicateIdentity  = errors.New("email address already registered")
	ErrOutOfRangeAge      = errors.New("assessment is designed for children aged 8-12")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid input")
)

// ServiceError carries an HTTP-agnostic code alongside one of the sentinel
// errors above. Kind is the stable machine-readable name of the sentinel.
type ServiceError struct {
	Code    ErrorCode
	Kind    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string { return e.Message }

func (e *ServiceError) Unwrap() error { return e.Err }

func newError(code ErrorCode, kind string, err error) error {
	return &ServiceError{Code: code, Kind: kind, Message: err.Error(), Err: err}
}

func NewInvalidError(msg string) error {
	return &ServiceError{Code: ErrorInvalid, Kind: "invalid_input", Message: msg, Err: ErrInvalidInput}
}

func invalidSession() error  { return newError(ErrorNotFound, "invalid_session", ErrInvalidSession) }
func invalidCategory() error { return newError(ErrorInvalid, "invalid_category", ErrInvalidCategory) }
func invalidScore() error    { return newError(ErrorInvalid, "invalid_score", ErrInvalidScore) }
func noActiveSession() error { return newError(ErrorInvalid, "no_active_session", ErrNoActiveSession) }
func sessionNotFound() error { return newError(ErrorNotFound, "session_not_found", ErrSessionNotFound) }
func sessionCompleted() error {
	return newError(ErrorConflict, "session_completed", ErrSessionCompleted)
}
func incompleteSession() error {
	return newError(ErrorInvalid, "incomplete_session", ErrIncompleteSession)
}
func accessDenied() error   { return newError(ErrorForbidden, "access_denied", ErrAccessDenied) }
func reportNotReady() error { return newError(ErrorConflict, "report_not_ready", ErrReportNotReady) }
func duplicateIdentity() error {
	return newError(ErrorConflict, "duplicate_identity", ErrDuplicateIdentity)
}
func outOfRangeAge() error { return newError(ErrorInvalid, "out_of_range_age", ErrOutOfRangeAge) }
func invalidCredentials() error {
	return newError(ErrorUnauthorized, "invalid_credentials", ErrInvalidCredentials)
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
