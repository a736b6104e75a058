package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for errors.Is checks. Every *Error built by the constructors
// below wraps exactly one of them.
var (
	ErrInvalidTransition       = errors.New("invalid transition")
	ErrPrematureAssignment     = errors.New("premature assignment")
	ErrPrematureReveal         = errors.New("premature reveal")
	ErrPrematureDecision       = errors.New("premature decision")
	ErrDecisionAlreadyRecorded = errors.New("decision already recorded")
	ErrValidation              = errors.New("validation error")
	ErrNotFound                = errors.New("not found")
	ErrForbidden               = errors.New("forbidden")
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func wrap(status int, code string, sentinel error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return New(status, code, fmt.Errorf("%w: %s", sentinel, msg))
}

func InvalidTransition(format string, args ...any) *Error {
	return wrap(http.StatusConflict, "invalid_transition", ErrInvalidTransition, format, args...)
}

func PrematureAssignment(format string, args ...any) *Error {
	return wrap(http.StatusConflict, "premature_assignment", ErrPrematureAssignment, format, args...)
}

func PrematureReveal(format string, args ...any) *Error {
	return wrap(http.StatusConflict, "premature_reveal", ErrPrematureReveal, format, args...)
}

func PrematureDecision(format string, args ...any) *Error {
	return wrap(http.StatusConflict, "premature_decision", ErrPrematureDecision, format, args...)
}

func DecisionAlreadyRecorded(proposalID uint) *Error {
	return wrap(http.StatusConflict, "decision_already_recorded", ErrDecisionAlreadyRecorded, "proposal %d is already decided", proposalID)
}

func Validation(format string, args ...any) *Error {
	return wrap(http.StatusUnprocessableEntity, "validation_error", ErrValidation, format, args...)
}

func NotFound(entity string, id any) *Error {
	return wrap(http.StatusNotFound, "not_found", ErrNotFound, "%s %v not found", entity, id)
}

func Forbidden(format string, args ...any) *Error {
	return wrap(http.StatusForbidden, "forbidden", ErrForbidden, format, args...)
}

// StatusOf maps any error to an HTTP status, defaulting to 500 for errors
// that did not originate here.
func StatusOf(err error) (int, string) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Status, apiErr.Code
	}
	return http.StatusInternalServerError, "internal_error"
}
