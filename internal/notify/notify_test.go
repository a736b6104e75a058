package notify

import (
	"context"
	"testing"

	"github.com/linskybing/grant-review/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPNotifier_RequiresHost(t *testing.T) {
	_, err := NewSMTPNotifier(SMTPConfig{From: "a@b.c"})
	assert.Error(t, err)

	n, err := NewSMTPNotifier(SMTPConfig{Host: "smtp.local", From: "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, 587, n.dialer.Port)
}

func TestSMTPNotifier_NoRecipientsIsNoop(t *testing.T) {
	n, err := NewSMTPNotifier(SMTPConfig{Host: "smtp.invalid", From: "a@b.c"})
	require.NoError(t, err)
	assert.NoError(t, n.Send(context.Background(), Message{Subject: "x"}))
}

func TestReviewerAssigned_EscapesAndOmitsIdentity(t *testing.T) {
	msg := ReviewerAssigned("rev@x.org", "Call <2026>", "B-0A1B2C3D")
	assert.Equal(t, []string{"rev@x.org"}, msg.To)
	assert.Contains(t, msg.Subject, "B-0A1B2C3D")
	assert.Contains(t, msg.HTML, "Call &lt;2026&gt;")
}

func TestDecisionRecorded(t *testing.T) {
	msg := DecisionRecorded("app@x.org", "Call", "Solar", "approved")
	assert.Contains(t, msg.HTML, "approved")
	assert.Contains(t, msg.Subject, "Solar")
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(logger.NewNop())
	assert.NoError(t, n.Send(context.Background(), Message{To: []string{"x@y.z"}}))
}
