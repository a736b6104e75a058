package repository

import (
	"context"

	"github.com/linskybing/grant-review/internal/domain/review"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepo interface {
	// InsertIgnore inserts a, doing nothing when the (proposal, reviewer)
	// pair already exists. It reports whether a row was created.
	InsertIgnore(ctx context.Context, a *review.Assignment) (bool, error)
	GetByID(ctx context.Context, id uint) (review.Assignment, error)
	ListByProposal(ctx context.Context, proposalID uint) ([]review.Assignment, error)
	ListByReviewers(ctx context.Context, reviewerIDs []uint) ([]review.Assignment, error)
	CountByCall(ctx context.Context, callID uint) (int64, error)
	CountPending(ctx context.Context, proposalID uint) (int64, error)
	MarkSubmitted(ctx context.Context, id uint) error
	WithTx(tx *gorm.DB) AssignmentRepo
}

type DBAssignmentRepo struct {
	db *gorm.DB
}

func NewAssignmentRepo(db *gorm.DB) *DBAssignmentRepo {
	return &DBAssignmentRepo{
		db: db,
	}
}

func (r *DBAssignmentRepo) InsertIgnore(ctx context.Context, a *review.Assignment) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(a)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *DBAssignmentRepo) GetByID(ctx context.Context, id uint) (review.Assignment, error) {
	var a review.Assignment
	err := r.db.WithContext(ctx).First(&a, id).Error
	return a, err
}

func (r *DBAssignmentRepo) ListByProposal(ctx context.Context, proposalID uint) ([]review.Assignment, error) {
	var assignments []review.Assignment
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("id ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *DBAssignmentRepo) ListByReviewers(ctx context.Context, reviewerIDs []uint) ([]review.Assignment, error) {
	var assignments []review.Assignment
	if len(reviewerIDs) == 0 {
		return assignments, nil
	}
	err := r.db.WithContext(ctx).
		Where("reviewer_id IN ?", reviewerIDs).
		Order("id ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *DBAssignmentRepo) CountByCall(ctx context.Context, callID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&review.Assignment{}).
		Where("call_id = ?", callID).
		Count(&count).Error
	return count, err
}

func (r *DBAssignmentRepo) CountPending(ctx context.Context, proposalID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&review.Assignment{}).
		Where("proposal_id = ? AND status = ?", proposalID, review.AssignmentAssigned).
		Count(&count).Error
	return count, err
}

func (r *DBAssignmentRepo) MarkSubmitted(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&review.Assignment{}).
		Where("id = ?", id).
		Update("status", review.AssignmentSubmitted).Error
}

func (r *DBAssignmentRepo) WithTx(tx *gorm.DB) AssignmentRepo {
	if tx == nil {
		return r
	}
	return &DBAssignmentRepo{
		db: tx,
	}
}
