package application

import (
	"testing"
	"time"

	"github.com/linskybing/grant-review/internal/domain/audit"
	"github.com/linskybing/grant-review/pkg/apierr"
	"github.com/linskybing/grant-review/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditQuery_RestrictedToManagers(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Audit.Query(ctx, types.Actor{UserID: 5, Role: types.RoleReviewer}, audit.QueryParams{})
	assert.ErrorIs(t, err, apierr.ErrForbidden)
	_, err = f.svc.Audit.Query(ctx, types.Actor{UserID: 5, Role: types.RoleApplicant}, audit.QueryParams{})
	assert.ErrorIs(t, err, apierr.ErrForbidden)
}

func TestAuditQuery_MasksApplicantActors(t *testing.T) {
	f := newFixture(t)
	c := f.openCall(1)
	f.submittedProposal(c.ID, f.applicant(10, "ana"), "1")

	action := audit.ActionProposalSubmitted
	params := audit.QueryParams{Action: &action}

	masked, err := f.svc.Audit.Query(ctx, manager, params)
	require.NoError(t, err)
	require.Len(t, masked, 1)
	assert.Zero(t, masked[0].ActorID)
	assert.Equal(t, types.RoleApplicant, masked[0].ActorRole)

	full, err := f.svc.Audit.Query(ctx, admin, params)
	require.NoError(t, err)
	require.Len(t, full, 1)
	assert.Equal(t, uint(10), full[0].ActorID)
}

func TestAuditTrail_CausalOrderSurvivesClockSkew(t *testing.T) {
	f := newFixture(t)
	c := f.openCall(1)
	published := f.now

	// a host with a lagging clock writes the next entry
	f.now = published.Add(-10 * time.Minute)
	f.submittedProposal(c.ID, f.applicant(10, "ana"), "1")

	callID := c.ID
	entries, err := f.svc.Audit.Query(ctx, admin, audit.QueryParams{CallID: &callID})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(entries), 3)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].CreatedAt.Before(entries[i-1].CreatedAt), "entry %d goes back in time", i)
	}
	assert.Equal(t, audit.ActionCallCreated, entries[0].Action)
	assert.Equal(t, audit.ActionProposalSubmitted, entries[len(entries)-1].Action)
}
