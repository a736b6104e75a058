package repository

import (
	"context"

	"github.com/linskybing/grant-review/internal/domain/reviewer"
	"gorm.io/gorm"
)

type ReviewerRepo interface {
	Create(ctx context.Context, r *reviewer.Reviewer) error
	GetByID(ctx context.Context, id uint) (reviewer.Reviewer, error)
	GetByIDs(ctx context.Context, ids []uint) ([]reviewer.Reviewer, error)
	GetByUser(ctx context.Context, organizationID, userID uint) (reviewer.Reviewer, error)
	ListByOrganization(ctx context.Context, organizationID uint) ([]reviewer.Reviewer, error)
	ListByUser(ctx context.Context, userID uint) ([]reviewer.Reviewer, error)
	WithTx(tx *gorm.DB) ReviewerRepo
}

type DBReviewerRepo struct {
	db *gorm.DB
}

func NewReviewerRepo(db *gorm.DB) *DBReviewerRepo {
	return &DBReviewerRepo{
		db: db,
	}
}

// Create inserts the reviewer together with its areas.
func (r *DBReviewerRepo) Create(ctx context.Context, rv *reviewer.Reviewer) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *DBReviewerRepo) GetByID(ctx context.Context, id uint) (reviewer.Reviewer, error) {
	var rv reviewer.Reviewer
	err := r.db.WithContext(ctx).Preload("Areas").First(&rv, id).Error
	return rv, err
}

func (r *DBReviewerRepo) GetByIDs(ctx context.Context, ids []uint) ([]reviewer.Reviewer, error) {
	var reviewers []reviewer.Reviewer
	if len(ids) == 0 {
		return reviewers, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Areas").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&reviewers).Error
	return reviewers, err
}

func (r *DBReviewerRepo) GetByUser(ctx context.Context, organizationID, userID uint) (reviewer.Reviewer, error) {
	var rv reviewer.Reviewer
	err := r.db.WithContext(ctx).
		Preload("Areas").
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&rv).Error
	return rv, err
}

func (r *DBReviewerRepo) ListByOrganization(ctx context.Context, organizationID uint) ([]reviewer.Reviewer, error) {
	var reviewers []reviewer.Reviewer
	err := r.db.WithContext(ctx).
		Preload("Areas").
		Where("organization_id = ?", organizationID).
		Order("full_name ASC").Order("id ASC").
		Find(&reviewers).Error
	return reviewers, err
}

// ListByUser returns every reviewer registration of one user across
// organizations.
func (r *DBReviewerRepo) ListByUser(ctx context.Context, userID uint) ([]reviewer.Reviewer, error) {
	var reviewers []reviewer.Reviewer
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&reviewers).Error
	return reviewers, err
}

func (r *DBReviewerRepo) WithTx(tx *gorm.DB) ReviewerRepo {
	if tx == nil {
		return r
	}
	return &DBReviewerRepo{
		db: tx,
	}
}
