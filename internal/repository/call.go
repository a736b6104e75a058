package repository

import (
	"context"
	"time"

	"github.com/linskybing/grant-review/internal/domain/call"
	"gorm.io/gorm"
)

type CallRepo interface {
	Create(ctx context.Context, c *call.Call) error
	GetByID(ctx context.Context, id uint) (call.Call, error)
	ListByOrganization(ctx context.Context, organizationID uint) ([]call.Call, error)
	ListDueForClosing(ctx context.Context, now time.Time) ([]call.Call, error)
	CompareAndSetStatus(ctx context.Context, c call.Call, to call.Status) (bool, error)
	WithTx(tx *gorm.DB) CallRepo
}

type DBCallRepo struct {
	db *gorm.DB
}

func NewCallRepo(db *gorm.DB) *DBCallRepo {
	return &DBCallRepo{
		db: db,
	}
}

func (r *DBCallRepo) Create(ctx context.Context, c *call.Call) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *DBCallRepo) GetByID(ctx context.Context, id uint) (call.Call, error) {
	var c call.Call
	err := r.db.WithContext(ctx).First(&c, id).Error
	return c, err
}

func (r *DBCallRepo) ListByOrganization(ctx context.Context, organizationID uint) ([]call.Call, error) {
	var calls []call.Call
	query := r.db.WithContext(ctx).Order("id ASC")
	if organizationID != 0 {
		query = query.Where("organization_id = ?", organizationID)
	}
	err := query.Find(&calls).Error
	return calls, err
}

func (r *DBCallRepo) ListDueForClosing(ctx context.Context, now time.Time) ([]call.Call, error) {
	var calls []call.Call
	err := r.db.WithContext(ctx).
		Where("lifecycle_status = ? AND is_cancelled = ?", call.StatusPublished, false).
		Where("closes_at IS NOT NULL AND closes_at <= ?", now).
		Order("id ASC").
		Find(&calls).Error
	return calls, err
}

// CompareAndSetStatus moves c to status "to" only if nobody changed the row
// since c was read. It reports false when the version check lost.
func (r *DBCallRepo) CompareAndSetStatus(ctx context.Context, c call.Call, to call.Status) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&call.Call{}).
		Where("id = ? AND version = ? AND lifecycle_status = ?", c.ID, c.Version, c.LifecycleStatus).
		Updates(map[string]interface{}{
			"lifecycle_status": to,
			"is_cancelled":     to == call.StatusCancelled,
			"version":          gorm.Expr("version + 1"),
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *DBCallRepo) WithTx(tx *gorm.DB) CallRepo {
	if tx == nil {
		return r
	}
	return &DBCallRepo{
		db: tx,
	}
}
