package application

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/linskybing/grant-review/internal/domain/applicant"
	"github.com/linskybing/grant-review/internal/domain/audit"
	"github.com/linskybing/grant-review/internal/domain/proposal"
	"github.com/linskybing/grant-review/internal/domain/reviewer"
	"github.com/linskybing/grant-review/internal/events"
	"github.com/linskybing/grant-review/internal/repository"
	"github.com/linskybing/grant-review/internal/storage"
	"github.com/linskybing/grant-review/pkg/apierr"
	"github.com/linskybing/grant-review/pkg/types"
)

const blindCodeAttempts = 5

var ErrStorageUnavailable = apierr.New(http.StatusServiceUnavailable, "storage_unavailable", errors.New("attachment storage is not configured"))

type ProposalService struct {
	*deps
	// NewCode generates blind codes; replaced in tests to force collisions.
	NewCode proposal.CodeGenerator
}

func NewProposalService(d *deps) *ProposalService {
	return &ProposalService{deps: d, NewCode: proposal.NewBlindCode}
}

// UpsertProfile stores the caller's identity profile, the only source of
// applicant identity for reveals and notifications.
func (s *ProposalService) UpsertProfile(ctx context.Context, actor types.Actor, input applicant.UpsertApplicantDTO) (*applicant.Applicant, error) {
	if actor.UserID == 0 {
		return nil, apierr.Forbidden("an authenticated user is required")
	}
	a := &applicant.Applicant{
		ID:          actor.UserID,
		FullName:    strings.TrimSpace(input.FullName),
		Email:       strings.TrimSpace(input.Email),
		Institution: strings.TrimSpace(input.Institution),
	}
	if a.FullName == "" || a.Email == "" {
		return nil, apierr.Validation("full_name and email are required")
	}
	if err := s.Repos.Applicant.Upsert(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Create opens a draft proposal with a fresh blind code. A code that
// collides inside the call is regenerated.
func (s *ProposalService) Create(ctx context.Context, actor types.Actor, callID uint, input proposal.CreateProposalDTO) (*proposal.Proposal, error) {
	if actor.UserID == 0 {
		return nil, apierr.Forbidden("an authenticated applicant is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apierr.Validation("title is required")
	}
	if reviewer.NormalizeAreaCode(input.AreaCode) == "" {
		return nil, apierr.Validation("area_code %q has no digits", input.AreaCode)
	}

	c, err := s.Repos.Call.GetByID(ctx, callID)
	if err != nil {
		return nil, notFoundOr(err, "call", callID)
	}
	if !c.AcceptsSubmissions(s.now()) {
		return nil, apierr.Validation("call %d is not accepting submissions", callID)
	}

	for attempt := 0; attempt < blindCodeAttempts; attempt++ {
		p := &proposal.Proposal{
			CallID:      callID,
			ApplicantID: actor.UserID,
			BlindCode:   s.NewCode(),
			Title:       title,
			Status:      proposal.StatusDraft,
			Answers:     input.Answers,
			AreaCode:    strings.TrimSpace(input.AreaCode),
		}
		err := s.Repos.ExecTx(ctx, func(tx *repository.Repos) error {
			if err := tx.Proposal.Create(ctx, p); err != nil {
				return err
			}
			return s.record(ctx, tx, actor, callID, audit.EntityProposal, p.ID, audit.ActionProposalCreated, map[string]interface{}{
				"blind_code": p.BlindCode,
			})
		})
		if err == nil {
			return p, nil
		}
		if !repository.IsDuplicateKey(err) {
			return nil, err
		}
		s.log.Warn("blind code collision, regenerating", "call_id", callID, "attempt", attempt+1)
	}
	return nil, errors.New("could not allocate a unique blind code")
}

// own loads a proposal for its owner. Other callers get not-found so the
// response does not confirm ownership.
func (s *ProposalService) own(ctx context.Context, repos *repository.Repos, actor types.Actor, id uint) (proposal.Proposal, error) {
	p, err := repos.Proposal.GetByID(ctx, id)
	if err != nil {
		return p, notFoundOr(err, "proposal", id)
	}
	if p.ApplicantID != actor.UserID {
		return p, apierr.NotFound("proposal", id)
	}
	return p, nil
}

func (s *ProposalService) UpdateDraft(ctx context.Context, actor types.Actor, id uint, input proposal.UpdateProposalDTO) (*proposal.Proposal, error) {
	p, err := s.own(ctx, s.Repos, actor, id)
	if err != nil {
		return nil, err
	}
	if p.Status != proposal.StatusDraft {
		return nil, apierr.Validation("proposal %d is %s and can no longer be edited", id, p.Status)
	}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apierr.Validation("title cannot be empty")
		}
		p.Title = strings.TrimSpace(*input.Title)
	}
	if input.AreaCode != nil {
		if reviewer.NormalizeAreaCode(*input.AreaCode) == "" {
			return nil, apierr.Validation("area_code %q has no digits", *input.AreaCode)
		}
		p.AreaCode = strings.TrimSpace(*input.AreaCode)
	}
	if input.Answers != nil {
		p.Answers = input.Answers
	}
	if err := s.Repos.Proposal.Save(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProposalService) Submit(ctx context.Context, actor types.Actor, id uint) (*proposal.Proposal, error) {
	var out proposal.Proposal
	err := s.Repos.ExecTx(ctx, func(tx *repository.Repos) error {
		p, err := s.own(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		c, err := tx.Call.GetByID(ctx, p.CallID)
		if err != nil {
			return err
		}
		if !c.AcceptsSubmissions(s.now()) {
			return apierr.Validation("call %d is not accepting submissions", c.ID)
		}
		ok, err := tx.Proposal.TransitionStatus(ctx, id, []proposal.Status{proposal.StatusDraft}, proposal.StatusSubmitted)
		if err != nil {
			return err
		}
		if !ok {
			return apierr.Validation("proposal %d is %s, only drafts can be submitted", id, p.Status)
		}
		if err := s.record(ctx, tx, actor, p.CallID, audit.EntityProposal, id, audit.ActionProposalSubmitted, map[string]interface{}{
			"blind_code": p.BlindCode,
		}); err != nil {
			return err
		}
		out, err = tx.Proposal.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:       audit.ActionProposalSubmitted,
		CallID:     out.CallID,
		ProposalID: out.ID,
		Payload:    map[string]interface{}{"blind_code": out.BlindCode},
	})
	return &out, nil
}

// Withdraw retracts a proposal before review starts. The blind code stays
// with the withdrawn row and is never handed out again.
func (s *ProposalService) Withdraw(ctx context.Context, actor types.Actor, id uint) (*proposal.Proposal, error) {
	var out proposal.Proposal
	err := s.Repos.ExecTx(ctx, func(tx *repository.Repos) error {
		p, err := s.own(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		from := []proposal.Status{proposal.StatusDraft, proposal.StatusSubmitted}
		ok, err := tx.Proposal.TransitionStatus(ctx, id, from, proposal.StatusWithdrawn)
		if err != nil {
			return err
		}
		if !ok {
			return apierr.Validation("proposal %d is %s and can no longer be withdrawn", id, p.Status)
		}
		if err := s.record(ctx, tx, actor, p.CallID, audit.EntityProposal, id, audit.ActionProposalWithdrawn, map[string]interface{}{
			"blind_code": p.BlindCode,
		}); err != nil {
			return err
		}
		out, err = tx.Proposal.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ProposalService) ListMine(ctx context.Context, actor types.Actor) ([]proposal.Proposal, error) {
	return s.Repos.Proposal.ListByApplicant(ctx, actor.UserID)
}

// ListBlind is the manager and reviewer listing of a call. Drafts are not
// included.
func (s *ProposalService) ListBlind(ctx context.Context, actor types.Actor, callID uint) ([]proposal.BlindView, error) {
	if !actor.IsManager() && actor.Role != types.RoleReviewer {
		return nil, apierr.Forbidden("blind listings are for managers and reviewers")
	}
	if _, err := s.Repos.Call.GetByID(ctx, callID); err != nil {
		return nil, notFoundOr(err, "call", callID)
	}
	return s.Repos.Proposal.ListBlindByCall(ctx, callID)
}

type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadAttachment stores a file for a draft proposal under its blind code.
func (s *ProposalService) UploadAttachment(ctx context.Context, actor types.Actor, id uint, up Upload) (*proposal.Attachment, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}
	p, err := s.own(ctx, s.Repos, actor, id)
	if err != nil {
		return nil, err
	}
	if p.Status != proposal.StatusDraft {
		return nil, apierr.Validation("attachments can only be added to drafts")
	}
	if strings.TrimSpace(up.FileName) == "" || up.Size <= 0 {
		return nil, apierr.Validation("a non-empty file is required")
	}

	key := storage.AttachmentKey(p.CallID, p.BlindCode, up.FileName)
	if err := s.store.Put(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		return nil, err
	}
	att := &proposal.Attachment{
		ProposalID:  id,
		ObjectKey:   key,
		FileName:    up.FileName,
		ContentType: up.ContentType,
		Size:        up.Size,
		UploadedBy:  actor.UserID,
	}
	if err := s.Repos.Proposal.CreateAttachment(ctx, att); err != nil {
		return nil, err
	}
	return att, nil
}

// ListAttachments returns attachments with short-lived download URLs. The
// owner, managers and reviewers may read them.
func (s *ProposalService) ListAttachments(ctx context.Context, actor types.Actor, id uint) ([]proposal.Attachment, error) {
	if actor.IsManager() || actor.Role == types.RoleReviewer {
		if _, err := s.Repos.Proposal.GetBlind(ctx, id); err != nil {
			return nil, notFoundOr(err, "proposal", id)
		}
	} else if _, err := s.own(ctx, s.Repos, actor, id); err != nil {
		return nil, err
	}

	atts, err := s.Repos.Proposal.ListAttachments(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return atts, nil
	}
	for i := range atts {
		url, err := s.store.PresignedGetURL(ctx, atts[i].ObjectKey, s.settings.PresignTTL)
		if err != nil {
			s.log.Warn("presign attachment failed", "attachment_id", atts[i].ID, "error", err)
			continue
		}
		atts[i].URL = url
	}
	return atts, nil
}
