package reveal

import "time"

// Record is an append-only log of one identity reveal. Re-reveals produce
// new records.
type Record struct {
	ID         uint      `gorm:"primaryKey;column:id" json:"id"`
	ProposalID uint      `gorm:"not null;index;column:proposal_id" json:"proposal_id"`
	CallID     uint      `gorm:"not null;index;column:call_id" json:"call_id"`
	RevealedBy uint      `gorm:"not null;column:revealed_by" json:"revealed_by"`
	Reason     string    `gorm:"type:text;not null" json:"reason"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Record) TableName() string {
	return "identity_reveals"
}

// Identity is the unmasked owner of a proposal returned by a reveal.
type Identity struct {
	ProposalID  uint      `json:"proposal_id"`
	BlindCode   string    `json:"blind_code"`
	ApplicantID uint      `json:"applicant_id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Institution string    `json:"institution"`
	RevealedAt  time.Time `json:"revealed_at"`
	RecordID    uint      `json:"record_id"`
}

type RevealDTO struct {
	ProposalIDs []uint `json:"proposal_ids" binding:"required"`
	Reason      string `json:"reason"`
}
