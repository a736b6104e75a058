package decision

import (
	"time"
)

type Outcome string

const (
	OutcomeApproved                Outcome = "approved"
	OutcomeApprovedWithAdjustments Outcome = "approved_with_adjustments"
	OutcomeNotApproved             Outcome = "not_approved"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeApproved, OutcomeApprovedWithAdjustments, OutcomeNotApproved:
		return true
	}
	return false
}

// RequiresJustification reports whether the outcome must be explained.
func (o Outcome) RequiresJustification() bool {
	return o != OutcomeApproved
}

// Decision is the write-once final determination on a proposal.
type Decision struct {
	ID            uint      `gorm:"primaryKey;column:id" json:"id"`
	ProposalID    uint      `gorm:"not null;uniqueIndex;column:proposal_id" json:"proposal_id"`
	CallID        uint      `gorm:"not null;index;column:call_id" json:"call_id"`
	Decision      Outcome   `gorm:"size:32;not null;column:decision" json:"decision"`
	Justification string    `gorm:"type:text" json:"justification"`
	DecidedBy     uint      `gorm:"not null;column:decided_by" json:"decided_by"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Decision) TableName() string {
	return "decisions"
}

type RecordDecisionDTO struct {
	Decision      Outcome `json:"decision" binding:"required"`
	Justification string  `json:"justification"`
}
