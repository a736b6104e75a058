package repository

import (
	"context"
	"time"

	"github.com/linskybing/grant-review/internal/domain/proposal"
	"gorm.io/gorm"
)

// ProposalRepo is the anonymity boundary. Blind* methods never read the
// owner reference; OwnerOf and ListByApplicant are the only reads of it.
type ProposalRepo interface {
	Create(ctx context.Context, p *proposal.Proposal) error
	GetByID(ctx context.Context, id uint) (proposal.Proposal, error)
	GetBlind(ctx context.Context, id uint) (proposal.BlindView, error)
	ListBlindByCall(ctx context.Context, callID uint) ([]proposal.BlindView, error)
	ListBlindByIDs(ctx context.Context, ids []uint) ([]proposal.BlindView, error)
	ListByApplicant(ctx context.Context, applicantID uint) ([]proposal.Proposal, error)
	OwnerOf(ctx context.Context, id uint) (uint, error)
	Save(ctx context.Context, p *proposal.Proposal) error
	TransitionStatus(ctx context.Context, id uint, from []proposal.Status, to proposal.Status) (bool, error)
	CreateAttachment(ctx context.Context, a *proposal.Attachment) error
	ListAttachments(ctx context.Context, proposalID uint) ([]proposal.Attachment, error)
	WithTx(tx *gorm.DB) ProposalRepo
}

type DBProposalRepo struct {
	db *gorm.DB
}

func NewProposalRepo(db *gorm.DB) *DBProposalRepo {
	return &DBProposalRepo{
		db: db,
	}
}

func (r *DBProposalRepo) Create(ctx context.Context, p *proposal.Proposal) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *DBProposalRepo) GetByID(ctx context.Context, id uint) (proposal.Proposal, error) {
	var p proposal.Proposal
	err := r.db.WithContext(ctx).First(&p, id).Error
	return p, err
}

func (r *DBProposalRepo) blindQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&proposal.Proposal{}).Select(proposal.BlindColumns)
}

func (r *DBProposalRepo) GetBlind(ctx context.Context, id uint) (proposal.BlindView, error) {
	var views []proposal.BlindView
	if err := r.blindQuery(ctx).Where("id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return proposal.BlindView{}, err
	}
	if len(views) == 0 {
		return proposal.BlindView{}, gorm.ErrRecordNotFound
	}
	return views[0], nil
}

func (r *DBProposalRepo) ListBlindByCall(ctx context.Context, callID uint) ([]proposal.BlindView, error) {
	var views []proposal.BlindView
	err := r.blindQuery(ctx).
		Where("call_id = ? AND status <> ?", callID, proposal.StatusDraft).
		Order("blind_code ASC").
		Scan(&views).Error
	return views, err
}

func (r *DBProposalRepo) ListBlindByIDs(ctx context.Context, ids []uint) ([]proposal.BlindView, error) {
	var views []proposal.BlindView
	if len(ids) == 0 {
		return views, nil
	}
	err := r.blindQuery(ctx).Where("id IN ?", ids).Order("id ASC").Scan(&views).Error
	return views, err
}

func (r *DBProposalRepo) ListByApplicant(ctx context.Context, applicantID uint) ([]proposal.Proposal, error) {
	var proposals []proposal.Proposal
	err := r.db.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC").Order("id DESC").
		Find(&proposals).Error
	return proposals, err
}

func (r *DBProposalRepo) OwnerOf(ctx context.Context, id uint) (uint, error) {
	var owners []uint
	err := r.db.WithContext(ctx).
		Model(&proposal.Proposal{}).
		Where("id = ?", id).
		Limit(1).
		Pluck("applicant_id", &owners).Error
	if err != nil {
		return 0, err
	}
	if len(owners) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return owners[0], nil
}

func (r *DBProposalRepo) Save(ctx context.Context, p *proposal.Proposal) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// TransitionStatus moves a proposal to "to" only when its current status is
// one of from. It reports whether the row changed.
func (r *DBProposalRepo) TransitionStatus(ctx context.Context, id uint, from []proposal.Status, to proposal.Status) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	switch to {
	case proposal.StatusSubmitted:
		updates["submitted_at"] = time.Now()
	case proposal.StatusWithdrawn:
		updates["withdrawn_at"] = time.Now()
	}
	res := r.db.WithContext(ctx).
		Model(&proposal.Proposal{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *DBProposalRepo) CreateAttachment(ctx context.Context, a *proposal.Attachment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *DBProposalRepo) ListAttachments(ctx context.Context, proposalID uint) ([]proposal.Attachment, error) {
	var attachments []proposal.Attachment
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("id ASC").
		Find(&attachments).Error
	return attachments, err
}

func (r *DBProposalRepo) WithTx(tx *gorm.DB) ProposalRepo {
	if tx == nil {
		return r
	}
	return &DBProposalRepo{
		db: tx,
	}
}
