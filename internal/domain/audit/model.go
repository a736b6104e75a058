package audit

import (
	"time"

	"gorm.io/datatypes"
)

// Entity types recorded in the trail.
const (
	EntityCall       = "call"
	EntityProposal   = "proposal"
	EntityAssignment = "assignment"
	EntityReview     = "review"
	EntityDecision   = "decision"
)

// Actions recorded in the trail.
const (
	ActionCallCreated       = "call.created"
	ActionCallTransition    = "call.transition"
	ActionProposalCreated   = "proposal.created"
	ActionProposalSubmitted = "proposal.submitted"
	ActionProposalWithdrawn = "proposal.withdrawn"
	ActionReviewersAssigned = "proposal.reviewers_assigned"
	ActionReviewSubmitted   = "review.submitted"
	ActionDecisionRecorded  = "decision.recorded"
	ActionIdentityRevealed  = "proposal.identity_revealed"
)

// Metadata keys shared by writers and readers of transition entries.
const (
	MetaFromStatus = "from_status"
	MetaToStatus   = "to_status"
)

// Entry is an append-only record of a domain event.
type Entry struct {
	ID         uint              `gorm:"primaryKey;column:id" json:"id"`
	CallID     *uint             `gorm:"index;column:call_id" json:"call_id,omitempty"`
	EntityType string            `gorm:"size:32;not null;index:idx_audit_entity,priority:1;column:entity_type" json:"entity_type"`
	EntityID   uint              `gorm:"not null;index:idx_audit_entity,priority:2;column:entity_id" json:"entity_id"`
	Action     string            `gorm:"size:64;not null;index;column:action" json:"action"`
	ActorID    uint              `gorm:"column:actor_id" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;column:actor_role" json:"actor_role"`
	Metadata   datatypes.JSONMap `gorm:"column:metadata" json:"metadata"`
	CreatedAt  time.Time         `gorm:"not null;index;column:created_at" json:"created_at"`
}

func (Entry) TableName() string {
	return "audit_entries"
}

// MetaString reads a string metadata value, tolerating absent keys.
func (e *Entry) MetaString(key string) string {
	if e.Metadata == nil {
		return ""
	}
	if v, ok := e.Metadata[key].(string); ok {
		return v
	}
	return ""
}

type QueryParams struct {
	CallID     *uint
	EntityType *string
	EntityID   *uint
	Action     *string
	ActorID    *uint
	StartTime  *time.Time
	EndTime    *time.Time
	Limit      int
	Offset     int
}
