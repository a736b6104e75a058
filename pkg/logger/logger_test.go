package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVsRedactsIdentity(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"proposal_id", 4,
		"email", "ana@uni.br",
		"full_name", "Ana",
		"Authorization", "Bearer x",
		"dangling",
	})

	assert.Equal(t, []interface{}{
		"proposal_id", 4,
		"email", "[REDACTED]",
		"full_name", "[REDACTED]",
		"Authorization", "[REDACTED]",
		"dangling",
	}, out)
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	l := NewNop().With("component", "test")
	l.Info("hello", "blind_code", "B-1")
	l.Sync()
}
