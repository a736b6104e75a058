package application

import (
	"context"

	"github.com/linskybing/grant-review/internal/domain/audit"
	"github.com/linskybing/grant-review/internal/domain/call"
	"github.com/linskybing/grant-review/internal/domain/proposal"
	"github.com/linskybing/grant-review/internal/domain/review"
	"github.com/linskybing/grant-review/internal/domain/reviewer"
	"github.com/linskybing/grant-review/internal/events"
	"github.com/linskybing/grant-review/internal/notify"
	"github.com/linskybing/grant-review/internal/repository"
	"github.com/linskybing/grant-review/pkg/apierr"
	"github.com/linskybing/grant-review/pkg/types"
)

type AssignmentService struct {
	*deps
}

type AssignResult struct {
	ProposalID  uint                `json:"proposal_id"`
	BlindCode   string              `json:"blind_code"`
	Requested   int                 `json:"requested"`
	NewlyAdded  []uint              `json:"newly_assigned_reviewer_ids"`
	Assignments []review.Assignment `json:"assignments"`
}

func (s *AssignmentService) matcher() review.AreaMatcher {
	return review.AreaMatcher{PrefixLength: s.settings.AreaPrefixLength}
}

// Candidates ranks the reviewers of the call's organization for one
// proposal.
func (s *AssignmentService) Candidates(ctx context.Context, actor types.Actor, proposalID uint) (review.Ranking, error) {
	if !actor.IsManager() {
		return review.Ranking{}, apierr.Forbidden("only managers can rank reviewers")
	}
	p, err := s.Repos.Proposal.GetBlind(ctx, proposalID)
	if err != nil {
		return review.Ranking{}, notFoundOr(err, "proposal", proposalID)
	}
	c, err := s.Repos.Call.GetByID(ctx, p.CallID)
	if err != nil {
		return review.Ranking{}, err
	}
	owner, err := s.Repos.Proposal.OwnerOf(ctx, proposalID)
	if err != nil {
		return review.Ranking{}, err
	}
	reviewers, err := s.Repos.Reviewer.ListByOrganization(ctx, c.OrganizationID)
	if err != nil {
		return review.Ranking{}, err
	}
	existing, err := s.Repos.Assignment.ListByProposal(ctx, proposalID)
	if err != nil {
		return review.Ranking{}, err
	}

	assigned := make(map[uint]bool, len(existing))
	for _, a := range existing {
		assigned[a.ReviewerID] = true
	}
	return review.RankReviewers(p.AreaCode, toCandidates(reviewers), assigned, owner, s.matcher()), nil
}

func toCandidates(reviewers []reviewer.Reviewer) []review.Candidate {
	out := make([]review.Candidate, 0, len(reviewers))
	for _, r := range reviewers {
		out = append(out, review.Candidate{
			ReviewerID: r.ID,
			UserID:     r.UserID,
			FullName:   r.FullName,
			AreaCodes:  r.AreaCodes(),
			Active:     r.Active,
		})
	}
	return out
}

// Assign attaches reviewers to a proposal once submissions have closed.
// Pairs that already exist are left alone, so repeating a request is
// harmless.
func (s *AssignmentService) Assign(ctx context.Context, actor types.Actor, proposalID uint, input review.AssignReviewersDTO) (*AssignResult, error) {
	if !actor.IsManager() {
		return nil, apierr.Forbidden("only managers can assign reviewers")
	}
	ids := uniqueIDs(input.ReviewerIDs)
	if len(ids) == 0 {
		return nil, apierr.Validation("reviewer_ids must not be empty")
	}

	result := &AssignResult{ProposalID: proposalID, Requested: len(ids)}
	var c call.Call
	var newReviewers []reviewer.Reviewer
	err := s.Repos.ExecTx(ctx, func(tx *repository.Repos) error {
		p, err := tx.Proposal.GetBlind(ctx, proposalID)
		if err != nil {
			return notFoundOr(err, "proposal", proposalID)
		}
		result.BlindCode = p.BlindCode
		c, err = tx.Call.GetByID(ctx, p.CallID)
		if err != nil {
			return err
		}
		if c.IsCancelled {
			return apierr.PrematureAssignment("call %d is cancelled", c.ID)
		}
		if !s.machine.AtOrAfter(c.LifecycleStatus, call.StatusClosed) {
			return apierr.PrematureAssignment("call %d is %s; reviewers can be assigned once it is closed", c.ID, c.LifecycleStatus)
		}
		if !p.Status.Reviewable() {
			return apierr.Validation("proposal %s is %s and cannot be reviewed", p.BlindCode, p.Status)
		}

		owner, err := tx.Proposal.OwnerOf(ctx, proposalID)
		if err != nil {
			return err
		}
		reviewers, err := tx.Reviewer.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uint]reviewer.Reviewer, len(reviewers))
		for _, r := range reviewers {
			byID[r.ID] = r
		}
		for _, id := range ids {
			r, ok := byID[id]
			if !ok || r.OrganizationID != c.OrganizationID {
				return apierr.NotFound("reviewer", id)
			}
			if !r.Active {
				return apierr.Validation("reviewer %d is inactive", id)
			}
			if r.UserID == owner {
				return apierr.Validation("reviewer %d cannot review their own proposal", id)
			}
		}

		for _, id := range ids {
			a := &review.Assignment{
				CallID:     c.ID,
				ProposalID: proposalID,
				ReviewerID: id,
				Status:     review.AssignmentAssigned,
				AssignedBy: actor.UserID,
			}
			created, err := tx.Assignment.InsertIgnore(ctx, a)
			if err != nil {
				return err
			}
			if created {
				result.NewlyAdded = append(result.NewlyAdded, id)
				newReviewers = append(newReviewers, byID[id])
			}
		}

		if len(result.NewlyAdded) > 0 {
			from := []proposal.Status{proposal.StatusSubmitted}
			if _, err := tx.Proposal.TransitionStatus(ctx, proposalID, from, proposal.StatusUnderReview); err != nil {
				return err
			}
		}

		if err := s.record(ctx, tx, actor, c.ID, audit.EntityProposal, proposalID, audit.ActionReviewersAssigned, map[string]interface{}{
			"requested":    len(ids),
			"inserted":     len(result.NewlyAdded),
			"reviewer_ids": result.NewlyAdded,
		}); err != nil {
			return err
		}

		result.Assignments, err = tx.Assignment.ListByProposal(ctx, proposalID)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, r := range newReviewers {
		if r.Email == "" {
			continue
		}
		if err := s.notifier.Send(ctx, notify.ReviewerAssigned(r.Email, c.Title, result.BlindCode)); err != nil {
			s.log.Warn("assignment mail failed", "reviewer_id", r.ID, "error", err)
		}
	}
	if len(result.NewlyAdded) > 0 {
		s.publish(ctx, events.Event{
			Type:       audit.ActionReviewersAssigned,
			CallID:     c.ID,
			ProposalID: proposalID,
			Payload: map[string]interface{}{
				"blind_code": result.BlindCode,
				"inserted":   len(result.NewlyAdded),
			},
		})
	}
	return result, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
