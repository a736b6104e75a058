package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsWrapSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
		status   int
		code     string
	}{
		{InvalidTransition("draft -> closed"), ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
		{PrematureAssignment("call is published"), ErrPrematureAssignment, http.StatusConflict, "premature_assignment"},
		{PrematureReveal("call is published"), ErrPrematureReveal, http.StatusConflict, "premature_reveal"},
		{PrematureDecision("no reviews"), ErrPrematureDecision, http.StatusConflict, "premature_decision"},
		{DecisionAlreadyRecorded(7), ErrDecisionAlreadyRecorded, http.StatusConflict, "decision_already_recorded"},
		{Validation("reason is required"), ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
		{NotFound("call", 3), ErrNotFound, http.StatusNotFound, "not_found"},
		{Forbidden("not yours"), ErrForbidden, http.StatusForbidden, "forbidden"},
	}

	for _, tc := range cases {
		assert.ErrorIs(t, tc.err, tc.sentinel)
		status, code := StatusOf(tc.err)
		assert.Equal(t, tc.status, status)
		assert.Equal(t, tc.code, code)
	}
}

func TestStatusOfSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("assign: %w", PrematureAssignment("call 1 is draft"))

	status, code := StatusOf(err)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "premature_assignment", code)
	assert.ErrorIs(t, err, ErrPrematureAssignment)
}

func TestStatusOfUnknownError(t *testing.T) {
	status, code := StatusOf(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", code)
}

func TestErrorMessage(t *testing.T) {
	err := NotFound("proposal", 42)
	assert.Equal(t, "not found: proposal 42 not found", err.Error())

	var nilErr *Error
	assert.Equal(t, "", nilErr.Error())
	assert.Equal(t, "conflict", New(http.StatusConflict, "conflict", nil).Error())
}
