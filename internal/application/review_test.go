package application

import (
	"testing"

	"github.com/linskybing/grant-review/internal/domain/proposal"
	"github.com/linskybing/grant-review/internal/domain/review"
	"github.com/linskybing/grant-review/pkg/apierr"
	"github.com/linskybing/grant-review/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReview_DraftThenSubmitLocks(t *testing.T) {
	f := newFixture(t)
	c := f.openCall(1)
	p := f.submittedProposal(c.ID, f.applicant(10, "ana"), "1")
	r := f.reviewer(1, 20, "rita", "1")
	f.closeCall(c)
	a := f.assignmentOf(f.assign(p.ID, r), r)
	actor := reviewerActor(r)

	criteria := []review.Criterion{
		{Name: "merit", Score: 8, Max: 10, Weight: 2},
		{Name: "feasibility", Score: 3, Max: 5, Weight: 1},
	}
	draft, err := f.svc.Review.SaveDraft(ctx, actor, a.ID, review.SaveReviewDTO{Criteria: criteria})
	require.NoError(t, err)
	assert.False(t, draft.IsSubmitted())

	_, err = f.svc.Review.Submit(ctx, actor, a.ID)
	assert.ErrorIs(t, err, apierr.ErrValidation, "recommendation is required")

	_, err = f.svc.Review.SaveDraft(ctx, actor, a.ID, review.SaveReviewDTO{
		Criteria:       criteria,
		Recommendation: review.RecommendationWithAdjustments,
	})
	require.NoError(t, err)

	submitted, err := f.svc.Review.Submit(ctx, actor, a.ID)
	require.NoError(t, err)
	require.NotNil(t, submitted.OverallScore)
	// (2*0.8 + 1*0.6) / 3 * 10
	assert.InDelta(t, 7.33, *submitted.OverallScore, 0.001)
	assert.True(t, submitted.IsSubmitted())

	_, err = f.svc.Review.SaveDraft(ctx, actor, a.ID, review.SaveReviewDTO{Comments: "edit"})
	assert.ErrorIs(t, err, apierr.ErrValidation)
	_, err = f.svc.Review.Submit(ctx, actor, a.ID)
	assert.ErrorIs(t, err, apierr.ErrValidation)

	got, err := f.repos.Proposal.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusEvaluated, got.Status)
}

func TestReview_DraftKeepsOverallScoreUnset(t *testing.T) {
	f := newFixture(t)
	c := f.openCall(1)
	p := f.submittedProposal(c.ID, f.applicant(10, "ana"), "1")
	r := f.reviewer(1, 20, "rita", "1")
	f.closeCall(c)
	a := f.assignmentOf(f.assign(p.ID, r), r)
	actor := reviewerActor(r)

	score := 7.5
	draft, err := f.svc.Review.SaveDraft(ctx, actor, a.ID, review.SaveReviewDTO{
		Recommendation: review.RecommendationRecommended,
		OverallScore:   &score,
	})
	require.NoError(t, err)
	assert.Nil(t, draft.OverallScore)
	require.NotNil(t, draft.ProposedScore)
	assert.Equal(t, 7.5, *draft.ProposedScore)

	var stored review.Review
	require.NoError(t, f.db.First(&stored, draft.ID).Error)
	assert.Nil(t, stored.SubmittedAt)
	assert.Nil(t, stored.OverallScore)

	// a second save goes through the update path
	score = 6
	_, err = f.svc.Review.SaveDraft(ctx, actor, a.ID, review.SaveReviewDTO{
		Recommendation: review.RecommendationRecommended,
		OverallScore:   &score,
	})
	require.NoError(t, err)
	require.NoError(t, f.db.First(&stored, draft.ID).Error)
	assert.Nil(t, stored.OverallScore)

	views, err := f.svc.Review.MyAssignments(ctx, actor)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].Review)
	assert.Nil(t, views[0].Review.OverallScore)

	submitted, err := f.svc.Review.Submit(ctx, actor, a.ID)
	require.NoError(t, err)
	require.NotNil(t, submitted.OverallScore)
	assert.Equal(t, 6.0, *submitted.OverallScore)
}

func TestReview_OnlyAssignedReviewer(t *testing.T) {
	f := newFixture(t)
	c := f.openCall(1)
	p := f.submittedProposal(c.ID, f.applicant(10, "ana"), "1")
	r := f.reviewer(1, 20, "rita", "1")
	f.closeCall(c)
	a := f.assignmentOf(f.assign(p.ID, r), r)

	_, err := f.svc.Review.SaveDraft(ctx, types.Actor{UserID: 99, Role: types.RoleReviewer}, a.ID, review.SaveReviewDTO{})
	assert.ErrorIs(t, err, apierr.ErrForbidden)
	_, err = f.svc.Review.SaveDraft(ctx, reviewerActor(r), 12345, review.SaveReviewDTO{})
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestReview_RejectsOutOfRangeScores(t *testing.T) {
	f := newFixture(t)
	c := f.openCall(1)
	p := f.submittedProposal(c.ID, f.applicant(10, "ana"), "1")
	r := f.reviewer(1, 20, "rita", "1")
	f.closeCall(c)
	a := f.assignmentOf(f.assign(p.ID, r), r)

	tooHigh := 11.0
	_, err := f.svc.Review.SaveDraft(ctx, reviewerActor(r), a.ID, review.SaveReviewDTO{OverallScore: &tooHigh})
	assert.ErrorIs(t, err, apierr.ErrValidation)
	_, err = f.svc.Review.SaveDraft(ctx, reviewerActor(r), a.ID, review.SaveReviewDTO{
		Criteria: []review.Criterion{{Name: "merit", Score: 6, Max: 5, Weight: 1}},
	})
	assert.ErrorIs(t, err, apierr.ErrValidation)
	_, err = f.svc.Review.SaveDraft(ctx, reviewerActor(r), a.ID, review.SaveReviewDTO{Recommendation: "maybe"})
	assert.ErrorIs(t, err, apierr.ErrValidation)
}

func TestMyAssignments_ShowsBlindProposal(t *testing.T) {
	f := newFixture(t)
	c := f.openCall(1)
	p := f.submittedProposal(c.ID, f.applicant(10, "ana"), "1")
	r := f.reviewer(1, 20, "rita", "1")
	f.closeCall(c)
	f.assign(p.ID, r)

	views, err := f.svc.Review.MyAssignments(ctx, reviewerActor(r))
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, p.BlindCode, views[0].Proposal.BlindCode)
	assert.Nil(t, views[0].Review)

	f.submitScore(views[0].Assignment, r, 7)
	views, err = f.svc.Review.MyAssignments(ctx, reviewerActor(r))
	require.NoError(t, err)
	require.NotNil(t, views[0].Review)
	assert.True(t, views[0].Review.IsSubmitted())
}
