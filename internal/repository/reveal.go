package repository

import (
	"context"

	"github.com/linskybing/grant-review/internal/domain/reveal"
	"gorm.io/gorm"
)

type RevealRepo interface {
	Create(ctx context.Context, rec *reveal.Record) error
	ListByProposal(ctx context.Context, proposalID uint) ([]reveal.Record, error)
	WithTx(tx *gorm.DB) RevealRepo
}

type DBRevealRepo struct {
	db *gorm.DB
}

func NewRevealRepo(db *gorm.DB) *DBRevealRepo {
	return &DBRevealRepo{
		db: db,
	}
}

func (r *DBRevealRepo) Create(ctx context.Context, rec *reveal.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *DBRevealRepo) ListByProposal(ctx context.Context, proposalID uint) ([]reveal.Record, error) {
	var records []reveal.Record
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("created_at ASC").Order("id ASC").
		Find(&records).Error
	return records, err
}

func (r *DBRevealRepo) WithTx(tx *gorm.DB) RevealRepo {
	if tx == nil {
		return r
	}
	return &DBRevealRepo{
		db: tx,
	}
}
