package application

import (
	"testing"
	"time"

	"github.com/linskybing/grant-review/internal/domain/audit"
	"github.com/linskybing/grant-review/internal/domain/reveal"
	"github.com/linskybing/grant-review/pkg/apierr"
	"github.com/linskybing/grant-review/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReveal_BeforeCloseWritesNothing(t *testing.T) {
	f := newFixture(t)
	c := f.openCall(1)
	p := f.submittedProposal(c.ID, f.applicant(10, "ana"), "1")

	_, err := f.svc.Reveal.Reveal(ctx, manager, reveal.RevealDTO{ProposalIDs: []uint{p.ID}, Reason: "conflict check"})
	assert.ErrorIs(t, err, apierr.ErrPrematureReveal)

	records, err := f.repos.Reveal.ListByProposal(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReveal_BatchIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	closedCall := f.openCall(1)
	p1 := f.submittedProposal(closedCall.ID, f.applicant(10, "ana"), "1")
	f.closeCall(closedCall)

	openCall := f.openCall(1)
	p2 := f.submittedProposal(openCall.ID, f.applicant(11, "bea"), "1")

	_, err := f.svc.Reveal.Reveal(ctx, manager, reveal.RevealDTO{ProposalIDs: []uint{p1.ID, 9999}, Reason: "audit"})
	assert.ErrorIs(t, err, apierr.ErrNotFound)

	_, err = f.svc.Reveal.Reveal(ctx, manager, reveal.RevealDTO{ProposalIDs: []uint{p1.ID, p2.ID}, Reason: "audit"})
	assert.ErrorIs(t, err, apierr.ErrPrematureReveal)

	records, err := f.repos.Reveal.ListByProposal(ctx, p1.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReveal_OwnerWithoutProfileRejectsBatch(t *testing.T) {
	f := newFixture(t)
	c := f.openCall(1)
	p1 := f.submittedProposal(c.ID, f.applicant(10, "ana"), "1")
	p2 := f.submittedProposal(c.ID, types.Actor{UserID: 12, Role: types.RoleApplicant}, "1")
	f.closeCall(c)

	_, err := f.svc.Reveal.Reveal(ctx, manager, reveal.RevealDTO{ProposalIDs: []uint{p1.ID, p2.ID}, Reason: "audit"})
	assert.ErrorIs(t, err, apierr.ErrNotFound)

	for _, id := range []uint{p1.ID, p2.ID} {
		records, err := f.repos.Reveal.ListByProposal(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, records)
	}
	action := audit.ActionIdentityRevealed
	entries, err := f.svc.Audit.Query(ctx, manager, audit.QueryParams{Action: &action})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReveal_Rejections(t *testing.T) {
	f := newFixture(t)
	c := f.openCall(1)
	p := f.submittedProposal(c.ID, f.applicant(10, "ana"), "1")
	f.closeCall(c)

	_, err := f.svc.Reveal.Reveal(ctx, manager, reveal.RevealDTO{ProposalIDs: []uint{p.ID}, Reason: "  "})
	assert.ErrorIs(t, err, apierr.ErrValidation)
	_, err = f.svc.Reveal.Reveal(ctx, manager, reveal.RevealDTO{Reason: "audit"})
	assert.ErrorIs(t, err, apierr.ErrValidation)
	_, err = f.svc.Reveal.Reveal(ctx, types.Actor{UserID: 20, Role: types.RoleReviewer}, reveal.RevealDTO{ProposalIDs: []uint{p.ID}, Reason: "audit"})
	assert.ErrorIs(t, err, apierr.ErrForbidden)
}

func TestReveal_ReturnsIdentityAndAudits(t *testing.T) {
	f := newFixture(t)
	c := f.openCall(1)
	p := f.submittedProposal(c.ID, f.applicant(10, "ana"), "1")
	f.closeCall(c)

	ids, err := f.svc.Reveal.Reveal(ctx, manager, reveal.RevealDTO{ProposalIDs: []uint{p.ID, p.ID}, Reason: "award ceremony"})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, uint(10), ids[0].ApplicantID)
	assert.Equal(t, "ana", ids[0].FullName)
	assert.Equal(t, "ana@uni.example", ids[0].Email)
	assert.Equal(t, p.BlindCode, ids[0].BlindCode)

	action := audit.ActionIdentityRevealed
	entries, err := f.svc.Audit.Query(ctx, manager, audit.QueryParams{Action: &action})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, p.ID, entries[0].EntityID)
	assert.Equal(t, "award ceremony", entries[0].MetaString("reason"))

	f.advance(time.Hour)
	again, err := f.svc.Reveal.Reveal(ctx, manager, reveal.RevealDTO{ProposalIDs: []uint{p.ID}, Reason: "second look"})
	require.NoError(t, err)
	assert.NotEqual(t, ids[0].RecordID, again[0].RecordID)

	records, err := f.repos.Reveal.ListByProposal(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
