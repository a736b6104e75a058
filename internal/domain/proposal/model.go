package proposal

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusEvaluated   Status = "evaluated"
	StatusDecided     Status = "decided"
	StatusWithdrawn   Status = "withdrawn"
)

// Proposal is an applicant's entry into a call. BlindCode is the only
// identifier reviewers and managers see before an identity reveal.
type Proposal struct {
	ID          uint              `gorm:"primaryKey;column:id" json:"id"`
	CallID      uint              `gorm:"not null;uniqueIndex:idx_proposal_call_blind,priority:1;column:call_id" json:"call_id"`
	ApplicantID uint              `gorm:"not null;index;column:applicant_id" json:"applicant_id"`
	BlindCode   string            `gorm:"size:16;not null;uniqueIndex:idx_proposal_call_blind,priority:2;column:blind_code" json:"blind_code"`
	Title       string            `gorm:"size:255;not null" json:"title"`
	Status      Status            `gorm:"size:32;not null;default:'draft'" json:"status"`
	Answers     datatypes.JSONMap `gorm:"column:answers" json:"answers"`
	AreaCode    string            `gorm:"size:32;column:area_code" json:"area_code"`
	SubmittedAt *time.Time        `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	WithdrawnAt *time.Time        `gorm:"column:withdrawn_at" json:"withdrawn_at,omitempty"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Proposal) TableName() string {
	return "proposals"
}

// BlindView is the anonymized projection served to reviewers and managers.
// It deliberately has no owner field.
type BlindView struct {
	ID          uint              `json:"id"`
	CallID      uint              `json:"call_id"`
	BlindCode   string            `json:"blind_code"`
	Title       string            `json:"title"`
	Status      Status            `json:"status"`
	Answers     datatypes.JSONMap `json:"answers"`
	AreaCode    string            `json:"area_code"`
	SubmittedAt *time.Time        `json:"submitted_at,omitempty"`
}

// BlindColumns is the column list for BlindView queries; applicant_id must
// never appear here.
var BlindColumns = []string{"id", "call_id", "blind_code", "title", "status", "answers", "area_code", "submitted_at"}

// Reviewable reports whether reviewers may be assigned in this status.
func (s Status) Reviewable() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusEvaluated:
		return true
	}
	return false
}

func (p *Proposal) Reviewable() bool {
	return p.Status.Reviewable()
}

// Attachment is a file stored in object storage under a blind-code key.
type Attachment struct {
	ID          uint      `gorm:"primaryKey;column:id" json:"id"`
	ProposalID  uint      `gorm:"not null;index;column:proposal_id" json:"proposal_id"`
	ObjectKey   string    `gorm:"size:512;not null;column:object_key" json:"-"`
	FileName    string    `gorm:"size:255;not null;column:file_name" json:"file_name"`
	ContentType string    `gorm:"size:128;column:content_type" json:"content_type"`
	Size        int64     `gorm:"column:size" json:"size"`
	UploadedBy  uint      `gorm:"column:uploaded_by" json:"-"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	URL         string    `gorm:"-" json:"url,omitempty"`
}

func (Attachment) TableName() string {
	return "proposal_attachments"
}

type CreateProposalDTO struct {
	Title    string                 `json:"title" binding:"required"`
	AreaCode string                 `json:"area_code" binding:"required"`
	Answers  map[string]interface{} `json:"answers"`
}

type UpdateProposalDTO struct {
	Title    *string                `json:"title,omitempty"`
	AreaCode *string                `json:"area_code,omitempty"`
	Answers  map[string]interface{} `json:"answers,omitempty"`
}
