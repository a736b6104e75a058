package repository

import (
	"context"

	"github.com/linskybing/grant-review/internal/domain/decision"
	"gorm.io/gorm"
)

// DecisionRepo is write-once per proposal; the unique index on proposal_id
// rejects a second Create.
type DecisionRepo interface {
	Create(ctx context.Context, d *decision.Decision) error
	GetByProposal(ctx context.Context, proposalID uint) (decision.Decision, error)
	WithTx(tx *gorm.DB) DecisionRepo
}

type DBDecisionRepo struct {
	db *gorm.DB
}

func NewDecisionRepo(db *gorm.DB) *DBDecisionRepo {
	return &DBDecisionRepo{
		db: db,
	}
}

func (r *DBDecisionRepo) Create(ctx context.Context, d *decision.Decision) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DBDecisionRepo) GetByProposal(ctx context.Context, proposalID uint) (decision.Decision, error) {
	var d decision.Decision
	err := r.db.WithContext(ctx).Where("proposal_id = ?", proposalID).First(&d).Error
	return d, err
}

func (r *DBDecisionRepo) WithTx(tx *gorm.DB) DecisionRepo {
	if tx == nil {
		return r
	}
	return &DBDecisionRepo{
		db: tx,
	}
}
