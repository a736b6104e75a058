package proposal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBlindCodeFormat(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		code := NewBlindCode()
		assert.True(t, IsBlindCode(code), code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 495)
}

func TestIsBlindCode(t *testing.T) {
	assert.False(t, IsBlindCode("B1"))
	assert.False(t, IsBlindCode("X-3F9A01C2"))
	assert.False(t, IsBlindCode("B-3f9a01c2"))
	assert.True(t, IsBlindCode("B-3F9A01C2"))
}

func TestBlindColumnsExcludeOwner(t *testing.T) {
	assert.NotContains(t, BlindColumns, "applicant_id")
}

func TestReviewable(t *testing.T) {
	for status, want := range map[Status]bool{
		StatusDraft:       false,
		StatusSubmitted:   true,
		StatusUnderReview: true,
		StatusEvaluated:   true,
		StatusDecided:     false,
		StatusWithdrawn:   false,
	} {
		p := Proposal{Status: status}
		assert.Equal(t, want, p.Reviewable(), string(status))
	}
}
