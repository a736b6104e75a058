package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/linskybing/grant-review/internal/domain/audit"
	"github.com/linskybing/grant-review/internal/domain/call"
	"github.com/linskybing/grant-review/internal/domain/decision"
	"github.com/linskybing/grant-review/internal/domain/proposal"
	"github.com/linskybing/grant-review/internal/domain/review"
	"github.com/linskybing/grant-review/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func seedProposal(t *testing.T, repos *Repos) (call.Call, proposal.Proposal) {
	t.Helper()
	c := call.Call{OrganizationID: 1, Title: "Call", LifecycleStatus: call.StatusClosed}
	require.NoError(t, repos.Call.Create(ctx, &c))
	p := proposal.Proposal{CallID: c.ID, ApplicantID: 10, BlindCode: "P-0001", Title: "T", Status: proposal.StatusSubmitted}
	require.NoError(t, repos.Proposal.Create(ctx, &p))
	return c, p
}

func TestAuditAppend_ClampsToLatestEntryOfCall(t *testing.T) {
	repos := NewRepositories(testutils.NewSQLiteDB(t))
	callID := uint(1)
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	first := &audit.Entry{CallID: &callID, EntityType: audit.EntityCall, EntityID: 1, Action: audit.ActionCallCreated, CreatedAt: base}
	require.NoError(t, repos.Audit.Append(ctx, first))
	skewed := &audit.Entry{CallID: &callID, EntityType: audit.EntityCall, EntityID: 1, Action: audit.ActionCallTransition, CreatedAt: base.Add(-time.Hour)}
	require.NoError(t, repos.Audit.Append(ctx, skewed))
	assert.True(t, skewed.CreatedAt.Equal(base))

	other := uint(2)
	unrelated := &audit.Entry{CallID: &other, EntityType: audit.EntityCall, EntityID: 2, Action: audit.ActionCallCreated, CreatedAt: base.Add(-time.Hour)}
	require.NoError(t, repos.Audit.Append(ctx, unrelated))
	assert.True(t, unrelated.CreatedAt.Equal(base.Add(-time.Hour)))

	entries, err := repos.Audit.ListCallTransitions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, audit.ActionCallCreated, entries[0].Action)
	assert.Equal(t, audit.ActionCallTransition, entries[1].Action)
}

func TestCallCompareAndSetStatus_StaleVersionLoses(t *testing.T) {
	repos := NewRepositories(testutils.NewSQLiteDB(t))
	c := call.Call{OrganizationID: 1, Title: "Call", LifecycleStatus: call.StatusDraft}
	require.NoError(t, repos.Call.Create(ctx, &c))

	ok, err := repos.Call.CompareAndSetStatus(ctx, c, call.StatusPublished)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Call.CompareAndSetStatus(ctx, c, call.StatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok, "c still carries the old version")

	got, err := repos.Call.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, call.StatusPublished, got.LifecycleStatus)
	assert.Equal(t, c.Version+1, got.Version)
}

func TestProposalTransitionStatus(t *testing.T) {
	repos := NewRepositories(testutils.NewSQLiteDB(t))
	_, p := seedProposal(t, repos)

	ok, err := repos.Proposal.TransitionStatus(ctx, p.ID, []proposal.Status{proposal.StatusDraft}, proposal.StatusSubmitted)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repos.Proposal.TransitionStatus(ctx, p.ID, []proposal.Status{proposal.StatusSubmitted}, proposal.StatusWithdrawn)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repos.Proposal.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusWithdrawn, got.Status)
	assert.NotNil(t, got.WithdrawnAt)
	assert.Equal(t, "P-0001", got.BlindCode)
}

func TestProposalBlindQueries(t *testing.T) {
	repos := NewRepositories(testutils.NewSQLiteDB(t))
	c, p := seedProposal(t, repos)
	draft := proposal.Proposal{CallID: c.ID, ApplicantID: 11, BlindCode: "P-0002", Title: "D", Status: proposal.StatusDraft}
	require.NoError(t, repos.Proposal.Create(ctx, &draft))

	views, err := repos.Proposal.ListBlindByCall(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, p.BlindCode, views[0].BlindCode)

	_, err = repos.Proposal.GetBlind(ctx, 9999)
	assert.True(t, IsNotFound(err))

	owner, err := repos.Proposal.OwnerOf(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(10), owner)

	dup := proposal.Proposal{CallID: c.ID, ApplicantID: 12, BlindCode: "P-0001", Title: "X"}
	assert.True(t, IsDuplicateKey(repos.Proposal.Create(ctx, &dup)))
}

func TestAssignmentInsertIgnore(t *testing.T) {
	repos := NewRepositories(testutils.NewSQLiteDB(t))
	c, p := seedProposal(t, repos)

	a := &review.Assignment{CallID: c.ID, ProposalID: p.ID, ReviewerID: 3, AssignedBy: 100}
	inserted, err := repos.Assignment.InsertIgnore(ctx, a)
	require.NoError(t, err)
	assert.True(t, inserted)

	again := &review.Assignment{CallID: c.ID, ProposalID: p.ID, ReviewerID: 3, AssignedBy: 101}
	inserted, err = repos.Assignment.InsertIgnore(ctx, again)
	require.NoError(t, err)
	assert.False(t, inserted)

	n, err := repos.Assignment.CountByCall(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestReviewSubmitIsWriteOnce(t *testing.T) {
	repos := NewRepositories(testutils.NewSQLiteDB(t))
	_, p := seedProposal(t, repos)

	rv := &review.Review{AssignmentID: 1, ProposalID: p.ID, ReviewerID: 3, Recommendation: review.RecommendationRecommended}
	require.NoError(t, repos.Review.SaveDraft(ctx, rv))

	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	ok, err := repos.Review.Submit(ctx, rv.ID, 7.5, at)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repos.Review.Submit(ctx, rv.ID, 1, at)
	require.NoError(t, err)
	assert.False(t, ok)

	rv.Comments = "late edit"
	assert.Error(t, repos.Review.SaveDraft(ctx, rv))

	scores, err := repos.Review.ListSubmittedScores(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []float64{7.5}, scores)
}

func TestReviewDraftNeverStoresOverallScore(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	repos := NewRepositories(db)
	_, p := seedProposal(t, repos)

	proposed, leaked := 8.0, 9.0
	rv := &review.Review{AssignmentID: 1, ProposalID: p.ID, ReviewerID: 3, ProposedScore: &proposed, OverallScore: &leaked}
	require.NoError(t, repos.Review.SaveDraft(ctx, rv))

	var stored review.Review
	require.NoError(t, db.First(&stored, rv.ID).Error)
	assert.Nil(t, stored.OverallScore)
	require.NotNil(t, stored.ProposedScore)
	assert.Equal(t, 8.0, *stored.ProposedScore)

	rv.OverallScore = &leaked
	require.NoError(t, repos.Review.SaveDraft(ctx, rv))
	require.NoError(t, db.First(&stored, rv.ID).Error)
	assert.Nil(t, stored.OverallScore)

	scores, err := repos.Review.ListSubmittedScores(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestDecisionUniquePerProposal(t *testing.T) {
	repos := NewRepositories(testutils.NewSQLiteDB(t))
	c, p := seedProposal(t, repos)

	first := &decision.Decision{ProposalID: p.ID, CallID: c.ID, Decision: decision.OutcomeApproved, DecidedBy: 100}
	require.NoError(t, repos.Decision.Create(ctx, first))
	second := &decision.Decision{ProposalID: p.ID, CallID: c.ID, Decision: decision.OutcomeNotApproved, DecidedBy: 100}
	assert.True(t, IsDuplicateKey(repos.Decision.Create(ctx, second)))
}

func TestExecTx_RollsBackOnError(t *testing.T) {
	repos := NewRepositories(testutils.NewSQLiteDB(t))
	boom := errors.New("boom")

	err := repos.ExecTx(ctx, func(tx *Repos) error {
		c := call.Call{OrganizationID: 1, Title: "rolled back"}
		if err := tx.Call.Create(ctx, &c); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	calls, err := repos.Call.ListByOrganization(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, calls)
}
