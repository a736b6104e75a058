package application

import (
	"context"
	"strings"

	"github.com/linskybing/grant-review/internal/domain/audit"
	"github.com/linskybing/grant-review/internal/domain/call"
	"github.com/linskybing/grant-review/internal/domain/proposal"
	"github.com/linskybing/grant-review/internal/domain/reveal"
	"github.com/linskybing/grant-review/internal/repository"
	"github.com/linskybing/grant-review/pkg/apierr"
	"github.com/linskybing/grant-review/pkg/types"
)

type RevealService struct {
	*deps
}

// Reveal unmasks the owners of a batch of proposals. The whole batch is
// validated before anything is written: an unknown proposal, a call that
// has not closed or an owner without a profile rejects every id and leaves
// no reveal record.
func (s *RevealService) Reveal(ctx context.Context, actor types.Actor, input reveal.RevealDTO) ([]reveal.Identity, error) {
	if !actor.IsManager() {
		return nil, apierr.Forbidden("only managers can reveal identities")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, apierr.Validation("a reason is required to reveal identities")
	}
	ids := uniqueIDs(input.ProposalIDs)
	if len(ids) == 0 {
		return nil, apierr.Validation("proposal_ids must not be empty")
	}

	var out []reveal.Identity
	err := s.Repos.ExecTx(ctx, func(tx *repository.Repos) error {
		views := make([]proposal.BlindView, 0, len(ids))
		calls := make(map[uint]call.Call)
		for _, id := range ids {
			v, err := tx.Proposal.GetBlind(ctx, id)
			if err != nil {
				return notFoundOr(err, "proposal", id)
			}
			views = append(views, v)
			if _, ok := calls[v.CallID]; !ok {
				c, err := tx.Call.GetByID(ctx, v.CallID)
				if err != nil {
					return err
				}
				calls[v.CallID] = c
			}
		}
		for _, v := range views {
			c := calls[v.CallID]
			if c.IsCancelled {
				return apierr.PrematureReveal("call %d is cancelled", c.ID)
			}
			if !s.machine.AtOrAfter(c.LifecycleStatus, call.StatusClosed) {
				return apierr.PrematureReveal("proposal %s belongs to call %d which is %s", v.BlindCode, c.ID, c.LifecycleStatus)
			}
		}

		owners := make(map[uint]uint, len(views))
		ownerIDs := make([]uint, 0, len(views))
		for _, v := range views {
			owner, err := tx.Proposal.OwnerOf(ctx, v.ID)
			if err != nil {
				return err
			}
			owners[v.ID] = owner
			ownerIDs = append(ownerIDs, owner)
		}
		profiles, err := tx.Applicant.GetByIDs(ctx, ownerIDs)
		if err != nil {
			return err
		}
		for _, owner := range ownerIDs {
			if _, ok := profiles[owner]; !ok {
				return apierr.NotFound("applicant profile", owner)
			}
		}

		now := s.now()
		for _, v := range views {
			rec := &reveal.Record{
				ProposalID: v.ID,
				CallID:     v.CallID,
				RevealedBy: actor.UserID,
				Reason:     reason,
				CreatedAt:  now,
			}
			if err := tx.Reveal.Create(ctx, rec); err != nil {
				return err
			}
			if err := s.record(ctx, tx, actor, v.CallID, audit.EntityProposal, v.ID, audit.ActionIdentityRevealed, map[string]interface{}{
				"reason":    reason,
				"record_id": rec.ID,
			}); err != nil {
				return err
			}

			profile := profiles[owners[v.ID]]
			out = append(out, reveal.Identity{
				ProposalID:  v.ID,
				BlindCode:   v.BlindCode,
				ApplicantID: owners[v.ID],
				FullName:    profile.FullName,
				Email:       profile.Email,
				Institution: profile.Institution,
				RevealedAt:  rec.CreatedAt,
				RecordID:    rec.ID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("identities revealed", "count", len(out), "actor_id", actor.UserID)
	return out, nil
}
