package repository

import (
	"context"
	"errors"
	"time"

	"github.com/linskybing/grant-review/internal/domain/review"
	"gorm.io/gorm"
)

type ReviewRepo interface {
	// GetByAssignment returns gorm.ErrRecordNotFound when no draft exists yet.
	GetByAssignment(ctx context.Context, assignmentID uint) (review.Review, error)
	SaveDraft(ctx context.Context, rv *review.Review) error
	// Submit locks the review. It reports false if it was already submitted.
	Submit(ctx context.Context, id uint, overallScore float64, at time.Time) (bool, error)
	ListSubmittedScores(ctx context.Context, proposalID uint) ([]float64, error)
	CountSubmitted(ctx context.Context, proposalID uint) (int64, error)
	WithTx(tx *gorm.DB) ReviewRepo
}

type DBReviewRepo struct {
	db *gorm.DB
}

func NewReviewRepo(db *gorm.DB) *DBReviewRepo {
	return &DBReviewRepo{
		db: db,
	}
}

func (r *DBReviewRepo) GetByAssignment(ctx context.Context, assignmentID uint) (review.Review, error) {
	var rv review.Review
	err := r.db.WithContext(ctx).Where("assignment_id = ?", assignmentID).First(&rv).Error
	return rv, err
}

// SaveDraft creates or updates a draft. Submitted reviews are never touched
// and overall_score is left to Submit.
func (r *DBReviewRepo) SaveDraft(ctx context.Context, rv *review.Review) error {
	rv.OverallScore = nil
	if rv.ID == 0 {
		return r.db.WithContext(ctx).Create(rv).Error
	}
	res := r.db.WithContext(ctx).
		Model(&review.Review{}).
		Where("id = ? AND submitted_at IS NULL", rv.ID).
		Updates(map[string]interface{}{
			"criteria":       rv.Criteria,
			"comments":       rv.Comments,
			"recommendation": rv.Recommendation,
			"proposed_score": rv.ProposedScore,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("review is already submitted")
	}
	return nil
}

func (r *DBReviewRepo) Submit(ctx context.Context, id uint, overallScore float64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&review.Review{}).
		Where("id = ? AND submitted_at IS NULL", id).
		Updates(map[string]interface{}{
			"overall_score": overallScore,
			"submitted_at":  at,
			"updated_at":    at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *DBReviewRepo) ListSubmittedScores(ctx context.Context, proposalID uint) ([]float64, error) {
	var scores []float64
	err := r.db.WithContext(ctx).
		Model(&review.Review{}).
		Where("proposal_id = ? AND submitted_at IS NOT NULL AND overall_score IS NOT NULL", proposalID).
		Order("id ASC").
		Pluck("overall_score", &scores).Error
	return scores, err
}

func (r *DBReviewRepo) CountSubmitted(ctx context.Context, proposalID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&review.Review{}).
		Where("proposal_id = ? AND submitted_at IS NOT NULL", proposalID).
		Count(&count).Error
	return count, err
}

func (r *DBReviewRepo) WithTx(tx *gorm.DB) ReviewRepo {
	if tx == nil {
		return r
	}
	return &DBReviewRepo{
		db: tx,
	}
}
