package application

import (
	"context"

	"github.com/linskybing/grant-review/internal/domain/audit"
	"github.com/linskybing/grant-review/internal/domain/call"
	"github.com/linskybing/grant-review/internal/domain/proposal"
	"github.com/linskybing/grant-review/internal/domain/review"
	"github.com/linskybing/grant-review/internal/events"
	"github.com/linskybing/grant-review/internal/repository"
	"github.com/linskybing/grant-review/pkg/apierr"
	"github.com/linskybing/grant-review/pkg/types"
)

type ReviewService struct {
	*deps
}

// AssignmentView is what a reviewer sees of one assignment.
type AssignmentView struct {
	Assignment review.Assignment  `json:"assignment"`
	Proposal   proposal.BlindView `json:"proposal"`
	Review     *review.Review     `json:"review,omitempty"`
}

// MyAssignments lists the caller's assignments across organizations.
func (s *ReviewService) MyAssignments(ctx context.Context, actor types.Actor) ([]AssignmentView, error) {
	regs, err := s.Repos.Reviewer.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	reviewerIDs := make([]uint, 0, len(regs))
	for _, r := range regs {
		reviewerIDs = append(reviewerIDs, r.ID)
	}
	assignments, err := s.Repos.Assignment.ListByReviewers(ctx, reviewerIDs)
	if err != nil {
		return nil, err
	}
	proposalIDs := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		proposalIDs = append(proposalIDs, a.ProposalID)
	}
	views, err := s.Repos.Proposal.ListBlindByIDs(ctx, proposalIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]proposal.BlindView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}

	out := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		view := AssignmentView{Assignment: a, Proposal: byID[a.ProposalID]}
		rv, err := s.Repos.Review.GetByAssignment(ctx, a.ID)
		if err == nil {
			view.Review = &rv
		} else if !repository.IsNotFound(err) {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// assignmentFor loads an assignment and checks that actor is its reviewer
// and that the call is in a reviewable phase.
func (s *ReviewService) assignmentFor(ctx context.Context, repos *repository.Repos, actor types.Actor, assignmentID uint) (review.Assignment, error) {
	a, err := repos.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		return a, notFoundOr(err, "assignment", assignmentID)
	}
	r, err := repos.Reviewer.GetByID(ctx, a.ReviewerID)
	if err != nil {
		return a, err
	}
	if r.UserID != actor.UserID {
		return a, apierr.Forbidden("assignment %d belongs to another reviewer", assignmentID)
	}
	c, err := repos.Call.GetByID(ctx, a.CallID)
	if err != nil {
		return a, err
	}
	if c.IsCancelled || !s.machine.AtOrAfter(c.LifecycleStatus, call.StatusClosed) {
		return a, apierr.Validation("call %d is not open for review", c.ID)
	}
	return a, nil
}

func validateDraft(input review.SaveReviewDTO, scale float64) error {
	if err := review.ValidateCriteria(input.Criteria); err != nil {
		return apierr.Validation("%v", err)
	}
	if input.Recommendation != "" && !input.Recommendation.Valid() {
		return apierr.Validation("unknown recommendation %q", input.Recommendation)
	}
	if input.OverallScore != nil && (*input.OverallScore < 0 || *input.OverallScore > scale) {
		return apierr.Validation("overall_score must be within [0, %.0f]", scale)
	}
	return nil
}

// SaveDraft creates or replaces the reviewer's draft. Submitted reviews are
// immutable.
func (s *ReviewService) SaveDraft(ctx context.Context, actor types.Actor, assignmentID uint, input review.SaveReviewDTO) (*review.Review, error) {
	if err := validateDraft(input, s.settings.ScoreScale); err != nil {
		return nil, err
	}
	criteria, err := review.EncodeCriteria(input.Criteria)
	if err != nil {
		return nil, err
	}

	var out review.Review
	err = s.Repos.ExecTx(ctx, func(tx *repository.Repos) error {
		a, err := s.assignmentFor(ctx, tx, actor, assignmentID)
		if err != nil {
			return err
		}
		rv, err := tx.Review.GetByAssignment(ctx, a.ID)
		if err != nil && !repository.IsNotFound(err) {
			return err
		}
		if rv.IsSubmitted() {
			return apierr.Validation("review for assignment %d is already submitted", a.ID)
		}
		rv.AssignmentID = a.ID
		rv.ProposalID = a.ProposalID
		rv.ReviewerID = a.ReviewerID
		rv.Criteria = criteria
		rv.Comments = input.Comments
		rv.Recommendation = input.Recommendation
		rv.ProposedScore = input.OverallScore
		if err := tx.Review.SaveDraft(ctx, &rv); err != nil {
			return err
		}
		out = rv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Submit locks the draft and fixes its overall score. When the last pending
// assignment of a proposal is submitted the proposal becomes evaluated.
func (s *ReviewService) Submit(ctx context.Context, actor types.Actor, assignmentID uint) (*review.Review, error) {
	var out review.Review
	var callID uint
	err := s.Repos.ExecTx(ctx, func(tx *repository.Repos) error {
		a, err := s.assignmentFor(ctx, tx, actor, assignmentID)
		if err != nil {
			return err
		}
		callID = a.CallID
		rv, err := tx.Review.GetByAssignment(ctx, a.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apierr.Validation("assignment %d has no draft to submit", a.ID)
			}
			return err
		}
		if rv.IsSubmitted() {
			return apierr.Validation("review for assignment %d is already submitted", a.ID)
		}
		if !rv.Recommendation.Valid() {
			return apierr.Validation("a recommendation is required to submit")
		}

		score, err := s.overallScore(rv)
		if err != nil {
			return err
		}
		ok, err := tx.Review.Submit(ctx, rv.ID, score, s.now())
		if err != nil {
			return err
		}
		if !ok {
			return apierr.Validation("review for assignment %d is already submitted", a.ID)
		}
		if err := tx.Assignment.MarkSubmitted(ctx, a.ID); err != nil {
			return err
		}
		pending, err := tx.Assignment.CountPending(ctx, a.ProposalID)
		if err != nil {
			return err
		}
		if pending == 0 {
			from := []proposal.Status{proposal.StatusUnderReview}
			if _, err := tx.Proposal.TransitionStatus(ctx, a.ProposalID, from, proposal.StatusEvaluated); err != nil {
				return err
			}
		}

		if err := s.record(ctx, tx, actor, a.CallID, audit.EntityReview, rv.ID, audit.ActionReviewSubmitted, map[string]interface{}{
			"assignment_id": a.ID,
			"proposal_id":   a.ProposalID,
			"overall_score": score,
		}); err != nil {
			return err
		}
		out, err = tx.Review.GetByAssignment(ctx, a.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:       audit.ActionReviewSubmitted,
		CallID:     callID,
		ProposalID: out.ProposalID,
	})
	return &out, nil
}

func (s *ReviewService) overallScore(rv review.Review) (float64, error) {
	if rv.ProposedScore != nil {
		return *rv.ProposedScore, nil
	}
	criteria, err := rv.DecodeCriteria()
	if err != nil {
		return 0, err
	}
	score, err := review.WeightedScore(criteria, s.settings.ScoreScale)
	if err != nil {
		return 0, apierr.Validation("cannot compute overall score: %v", err)
	}
	return score, nil
}
