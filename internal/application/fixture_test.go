package application

import (
	"context"
	"testing"
	"time"

	"github.com/linskybing/grant-review/internal/domain/applicant"
	"github.com/linskybing/grant-review/internal/domain/call"
	"github.com/linskybing/grant-review/internal/domain/proposal"
	"github.com/linskybing/grant-review/internal/domain/review"
	"github.com/linskybing/grant-review/internal/domain/reviewer"
	"github.com/linskybing/grant-review/internal/repository"
	"github.com/linskybing/grant-review/internal/testutils"
	"github.com/linskybing/grant-review/pkg/types"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	ctx     = context.Background()
	manager = types.Actor{UserID: 100, Role: types.RoleManager}
	admin   = types.Actor{UserID: 1, Role: types.RoleAdmin}
)

type fixture struct {
	t     *testing.T
	db    *gorm.DB
	repos *repository.Repos
	svc   *Services
	now   time.Time
}

func newFixture(t *testing.T, configure ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		t:   t,
		db:  testutils.NewSQLiteDB(t),
		now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.repos = repository.NewRepositories(f.db)
	opts := Options{Now: func() time.Time { return f.now }}
	for _, fn := range configure {
		fn(&opts)
	}
	f.svc = New(f.repos, opts)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// openCall creates a call open for a day and publishes it.
func (f *fixture) openCall(orgID uint) call.Call {
	f.t.Helper()
	opens := f.now.Add(-time.Hour)
	closes := f.now.Add(24 * time.Hour)
	c, err := f.svc.Lifecycle.CreateCall(ctx, manager, call.CreateCallDTO{
		OrganizationID: orgID,
		Title:          "Research Call 2026",
		OpensAt:        &opens,
		ClosesAt:       &closes,
	})
	require.NoError(f.t, err)
	f.advance(time.Minute)
	published, err := f.svc.Lifecycle.Transition(ctx, manager, c.ID, call.TransitionDTO{TargetStatus: call.StatusPublished})
	require.NoError(f.t, err)
	return *published
}

// closeCall moves past the closing time and closes the call.
func (f *fixture) closeCall(c call.Call) call.Call {
	f.t.Helper()
	if c.ClosesAt != nil && f.now.Before(*c.ClosesAt) {
		f.now = c.ClosesAt.Add(time.Minute)
	}
	closed, err := f.svc.Lifecycle.Transition(ctx, manager, c.ID, call.TransitionDTO{TargetStatus: call.StatusClosed})
	require.NoError(f.t, err)
	return *closed
}

func (f *fixture) applicant(userID uint, name string) types.Actor {
	f.t.Helper()
	actor := types.Actor{UserID: userID, Role: types.RoleApplicant}
	_, err := f.svc.Proposal.UpsertProfile(ctx, actor, applicant.UpsertApplicantDTO{
		FullName:    name,
		Email:       name + "@uni.example",
		Institution: "State University",
	})
	require.NoError(f.t, err)
	return actor
}

func (f *fixture) submittedProposal(callID uint, owner types.Actor, area string) proposal.Proposal {
	f.t.Helper()
	p, err := f.svc.Proposal.Create(ctx, owner, callID, proposal.CreateProposalDTO{
		Title:    "Solar microgrids",
		AreaCode: area,
		Answers:  map[string]interface{}{"summary": "grid storage"},
	})
	require.NoError(f.t, err)
	submitted, err := f.svc.Proposal.Submit(ctx, owner, p.ID)
	require.NoError(f.t, err)
	return *submitted
}

func (f *fixture) reviewer(orgID, userID uint, name string, areas ...string) reviewer.Reviewer {
	f.t.Helper()
	r, err := f.svc.Reviewer.Register(ctx, manager, reviewer.CreateReviewerDTO{
		UserID:         userID,
		OrganizationID: orgID,
		FullName:       name,
		Email:          name + "@review.example",
		AreaCodes:      areas,
	})
	require.NoError(f.t, err)
	return *r
}

func (f *fixture) assign(proposalID uint, reviewers ...reviewer.Reviewer) *AssignResult {
	f.t.Helper()
	ids := make([]uint, 0, len(reviewers))
	for _, r := range reviewers {
		ids = append(ids, r.ID)
	}
	res, err := f.svc.Assignment.Assign(ctx, manager, proposalID, review.AssignReviewersDTO{ReviewerIDs: ids})
	require.NoError(f.t, err)
	return res
}

func (f *fixture) assignmentOf(res *AssignResult, r reviewer.Reviewer) review.Assignment {
	f.t.Helper()
	for _, a := range res.Assignments {
		if a.ReviewerID == r.ID {
			return a
		}
	}
	f.t.Fatalf("reviewer %d not assigned", r.ID)
	return review.Assignment{}
}

func reviewerActor(r reviewer.Reviewer) types.Actor {
	return types.Actor{UserID: r.UserID, Role: types.RoleReviewer}
}

func (f *fixture) submitScore(a review.Assignment, r reviewer.Reviewer, score float64) review.Review {
	f.t.Helper()
	actor := reviewerActor(r)
	_, err := f.svc.Review.SaveDraft(ctx, actor, a.ID, review.SaveReviewDTO{
		Comments:       "solid methodology",
		Recommendation: review.RecommendationRecommended,
		OverallScore:   &score,
	})
	require.NoError(f.t, err)
	rv, err := f.svc.Review.Submit(ctx, actor, a.ID)
	require.NoError(f.t, err)
	return *rv
}
