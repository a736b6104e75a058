package call

import (
	"errors"
	"time"
)

// Status is the lifecycle status of a call.
type Status string

const (
	StatusDraft             Status = "draft"
	StatusPublished         Status = "published"
	StatusClosed            Status = "closed"
	StatusUnderReview       Status = "under_review"
	StatusPreliminaryResult Status = "preliminary_result"
	StatusFinalResult       Status = "final_result"
	StatusHomologated       Status = "homologated"
	StatusGranted           Status = "granted"
	StatusCancelled         Status = "cancelled"
)

// Call is a published opportunity (edital) with a bounded lifecycle.
// It is never deleted; cancellation is a terminal status.
type Call struct {
	ID              uint       `gorm:"primaryKey;column:id" json:"id"`
	OrganizationID  uint       `gorm:"not null;index;column:organization_id" json:"organization_id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	LifecycleStatus Status     `gorm:"size:32;not null;default:'draft';column:lifecycle_status" json:"lifecycle_status"`
	OpensAt         *time.Time `gorm:"column:opens_at" json:"opens_at,omitempty"`
	ClosesAt        *time.Time `gorm:"column:closes_at" json:"closes_at,omitempty"`
	IsCancelled     bool       `gorm:"not null;default:false;column:is_cancelled" json:"is_cancelled"`
	Version         int        `gorm:"not null;default:0;column:version" json:"-"`
	CreatedBy       uint       `gorm:"column:created_by" json:"created_by"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Call) TableName() string {
	return "calls"
}

// ValidateWindow enforces opens_at < closes_at when both are set.
func (c *Call) ValidateWindow() error {
	if c.OpensAt != nil && c.ClosesAt != nil && !c.OpensAt.Before(*c.ClosesAt) {
		return errors.New("opens_at must be before closes_at")
	}
	return nil
}

// AcceptsSubmissions reports whether proposals can be created or submitted at now.
func (c *Call) AcceptsSubmissions(now time.Time) bool {
	if c.IsCancelled || c.LifecycleStatus != StatusPublished {
		return false
	}
	if c.OpensAt != nil && now.Before(*c.OpensAt) {
		return false
	}
	if c.ClosesAt != nil && !now.Before(*c.ClosesAt) {
		return false
	}
	return true
}

type CreateCallDTO struct {
	OrganizationID uint       `json:"organization_id" binding:"required"`
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description"`
	OpensAt        *time.Time `json:"opens_at,omitempty"`
	ClosesAt       *time.Time `json:"closes_at,omitempty"`
}

type TransitionDTO struct {
	TargetStatus Status `json:"target_status" binding:"required"`
	Override     bool   `json:"override"`
}
