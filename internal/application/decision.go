package application

import (
	"context"
	"strings"

	"github.com/linskybing/grant-review/internal/domain/audit"
	"github.com/linskybing/grant-review/internal/domain/call"
	"github.com/linskybing/grant-review/internal/domain/decision"
	"github.com/linskybing/grant-review/internal/domain/proposal"
	"github.com/linskybing/grant-review/internal/events"
	"github.com/linskybing/grant-review/internal/notify"
	"github.com/linskybing/grant-review/internal/repository"
	"github.com/linskybing/grant-review/pkg/apierr"
	"github.com/linskybing/grant-review/pkg/types"
)

type DecisionService struct {
	*deps
}

// Aggregate summarizes the submitted reviews of a proposal. Drafts never
// count.
func (s *DecisionService) Aggregate(ctx context.Context, actor types.Actor, proposalID uint) (decision.Summary, error) {
	if !actor.IsManager() {
		return decision.Summary{}, apierr.Forbidden("only managers can see aggregated scores")
	}
	if _, err := s.Repos.Proposal.GetBlind(ctx, proposalID); err != nil {
		return decision.Summary{}, notFoundOr(err, "proposal", proposalID)
	}
	scores, err := s.Repos.Review.ListSubmittedScores(ctx, proposalID)
	if err != nil {
		return decision.Summary{}, err
	}
	return decision.Aggregate(proposalID, scores, s.settings.DispersionThreshold), nil
}

func (s *DecisionService) Get(ctx context.Context, proposalID uint) (*decision.Decision, error) {
	d, err := s.Repos.Decision.GetByProposal(ctx, proposalID)
	if err != nil {
		return nil, notFoundOr(err, "decision for proposal", proposalID)
	}
	return &d, nil
}

// Record stores the final decision on a proposal. A proposal is decided at
// most once; later attempts fail and leave the first decision untouched.
func (s *DecisionService) Record(ctx context.Context, actor types.Actor, proposalID uint, input decision.RecordDecisionDTO) (*decision.Decision, error) {
	if !actor.IsManager() {
		return nil, apierr.Forbidden("only managers can record decisions")
	}
	if !input.Decision.Valid() {
		return nil, apierr.Validation("unknown decision %q", input.Decision)
	}
	justification := strings.TrimSpace(input.Justification)
	if input.Decision.RequiresJustification() && justification == "" {
		return nil, apierr.Validation("a justification is required for %s", input.Decision)
	}

	var (
		d  decision.Decision
		c  call.Call
		bp proposal.BlindView
	)
	err := s.Repos.ExecTx(ctx, func(tx *repository.Repos) error {
		var err error
		bp, err = tx.Proposal.GetBlind(ctx, proposalID)
		if err != nil {
			return notFoundOr(err, "proposal", proposalID)
		}
		c, err = tx.Call.GetByID(ctx, bp.CallID)
		if err != nil {
			return err
		}
		if c.IsCancelled {
			return apierr.PrematureDecision("call %d is cancelled", c.ID)
		}
		if !s.machine.AtOrAfter(c.LifecycleStatus, call.StatusClosed) {
			return apierr.PrematureDecision("call %d is %s; decisions require a closed call", c.ID, c.LifecycleStatus)
		}
		submitted, err := tx.Review.CountSubmitted(ctx, proposalID)
		if err != nil {
			return err
		}
		if submitted == 0 {
			return apierr.PrematureDecision("proposal %s has no submitted review", bp.BlindCode)
		}
		if _, err := tx.Decision.GetByProposal(ctx, proposalID); err == nil {
			return apierr.DecisionAlreadyRecorded(proposalID)
		} else if !repository.IsNotFound(err) {
			return err
		}

		d = decision.Decision{
			ProposalID:    proposalID,
			CallID:        c.ID,
			Decision:      input.Decision,
			Justification: justification,
			DecidedBy:     actor.UserID,
		}
		if err := tx.Decision.Create(ctx, &d); err != nil {
			if repository.IsDuplicateKey(err) {
				return apierr.DecisionAlreadyRecorded(proposalID)
			}
			return err
		}
		from := []proposal.Status{proposal.StatusSubmitted, proposal.StatusUnderReview, proposal.StatusEvaluated}
		if _, err := tx.Proposal.TransitionStatus(ctx, proposalID, from, proposal.StatusDecided); err != nil {
			return err
		}
		return s.record(ctx, tx, actor, c.ID, audit.EntityDecision, d.ID, audit.ActionDecisionRecorded, map[string]interface{}{
			"proposal_id": proposalID,
			"decision":    string(d.Decision),
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifyApplicant(ctx, c, proposalID, d)
	s.publish(ctx, events.Event{
		Type:       audit.ActionDecisionRecorded,
		CallID:     c.ID,
		ProposalID: proposalID,
		Payload: map[string]interface{}{
			"blind_code": bp.BlindCode,
			"decision":   d.Decision,
		},
	})
	return &d, nil
}

func (s *DecisionService) notifyApplicant(ctx context.Context, c call.Call, proposalID uint, d decision.Decision) {
	p, err := s.Repos.Proposal.GetByID(ctx, proposalID)
	if err != nil {
		s.log.Warn("decision mail skipped", "proposal_id", proposalID, "error", err)
		return
	}
	profile, err := s.Repos.Applicant.GetByID(ctx, p.ApplicantID)
	if err != nil {
		if !repository.IsNotFound(err) {
			s.log.Warn("decision mail skipped", "proposal_id", proposalID, "error", err)
		}
		return
	}
	if err := s.notifier.Send(ctx, notify.DecisionRecorded(profile.Email, c.Title, p.Title, string(d.Decision))); err != nil {
		s.log.Warn("decision mail failed", "proposal_id", proposalID, "error", err)
	}
}
