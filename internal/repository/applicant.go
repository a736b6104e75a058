package repository

import (
	"context"

	"github.com/linskybing/grant-review/internal/domain/applicant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplicantRepo holds identity profiles. Its reads are limited to the reveal
// join and the applicant's own views.
type ApplicantRepo interface {
	Upsert(ctx context.Context, a *applicant.Applicant) error
	GetByID(ctx context.Context, id uint) (applicant.Applicant, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]applicant.Applicant, error)
	WithTx(tx *gorm.DB) ApplicantRepo
}

type DBApplicantRepo struct {
	db *gorm.DB
}

func NewApplicantRepo(db *gorm.DB) *DBApplicantRepo {
	return &DBApplicantRepo{
		db: db,
	}
}

func (r *DBApplicantRepo) Upsert(ctx context.Context, a *applicant.Applicant) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "email", "institution", "updated_at"}),
	}).Create(a).Error
}

func (r *DBApplicantRepo) GetByID(ctx context.Context, id uint) (applicant.Applicant, error) {
	var a applicant.Applicant
	err := r.db.WithContext(ctx).First(&a, id).Error
	return a, err
}

func (r *DBApplicantRepo) GetByIDs(ctx context.Context, ids []uint) (map[uint]applicant.Applicant, error) {
	out := make(map[uint]applicant.Applicant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []applicant.Applicant
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, a := range rows {
		out[a.ID] = a
	}
	return out, nil
}

func (r *DBApplicantRepo) WithTx(tx *gorm.DB) ApplicantRepo {
	if tx == nil {
		return r
	}
	return &DBApplicantRepo{
		db: tx,
	}
}
