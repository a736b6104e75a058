package repository

import (
	"context"
	"time"

	"github.com/linskybing/grant-review/internal/domain/audit"
	"gorm.io/gorm"
)

// AuditRepo is append-only: there is no update or delete.
type AuditRepo interface {
	Append(ctx context.Context, entry *audit.Entry) error
	Query(ctx context.Context, params audit.QueryParams) ([]audit.Entry, error)
	ListCallTransitions(ctx context.Context, callID uint) ([]audit.Entry, error)
	WithTx(tx *gorm.DB) AuditRepo
}

type DBAuditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) *DBAuditRepo {
	return &DBAuditRepo{
		db: db,
	}
}

// Append stores entry. Entries carrying a call context never get a
// created_at earlier than the latest entry of the same call.
func (r *DBAuditRepo) Append(ctx context.Context, entry *audit.Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.CallID != nil {
		var latest audit.Entry
		err := r.db.WithContext(ctx).
			Where("call_id = ?", *entry.CallID).
			Order("created_at DESC").Order("id DESC").
			Limit(1).
			Find(&latest).Error
		if err != nil {
			return err
		}
		if latest.ID != 0 && latest.CreatedAt.After(entry.CreatedAt) {
			entry.CreatedAt = latest.CreatedAt
		}
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *DBAuditRepo) Query(ctx context.Context, params audit.QueryParams) ([]audit.Entry, error) {
	var entries []audit.Entry
	query := r.db.WithContext(ctx).Model(&audit.Entry{})

	if params.CallID != nil {
		query = query.Where("call_id = ?", *params.CallID)
	}
	if params.EntityType != nil {
		query = query.Where("entity_type = ?", *params.EntityType)
	}
	if params.EntityID != nil {
		query = query.Where("entity_id = ?", *params.EntityID)
	}
	if params.Action != nil {
		query = query.Where("action = ?", *params.Action)
	}
	if params.ActorID != nil {
		query = query.Where("actor_id = ?", *params.ActorID)
	}
	if params.StartTime != nil {
		query = query.Where("created_at >= ?", *params.StartTime)
	}
	if params.EndTime != nil {
		query = query.Where("created_at <= ?", *params.EndTime)
	}

	query = query.Order("created_at ASC").Order("id ASC")
	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	}
	if params.Offset > 0 {
		query = query.Offset(params.Offset)
	}

	err := query.Find(&entries).Error
	return entries, err
}

// ListCallTransitions returns creation and transition entries of a call in
// causal order.
func (r *DBAuditRepo) ListCallTransitions(ctx context.Context, callID uint) ([]audit.Entry, error) {
	var entries []audit.Entry
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", audit.EntityCall, callID).
		Where("action IN ?", []string{audit.ActionCallCreated, audit.ActionCallTransition}).
		Order("created_at ASC").Order("id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *DBAuditRepo) WithTx(tx *gorm.DB) AuditRepo {
	if tx == nil {
		return r
	}
	return &DBAuditRepo{
		db: tx,
	}
}
