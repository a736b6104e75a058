package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "assigned"
	AssignmentSubmitted AssignmentStatus = "submitted"
)

// Assignment designates a reviewer for a proposal. There is at most one row
// per (proposal, reviewer) pair.
type Assignment struct {
	ID         uint             `gorm:"primaryKey;column:id" json:"id"`
	CallID     uint             `gorm:"not null;index;column:call_id" json:"call_id"`
	ProposalID uint             `gorm:"not null;uniqueIndex:idx_assignment_pair,priority:1;column:proposal_id" json:"proposal_id"`
	ReviewerID uint             `gorm:"not null;uniqueIndex:idx_assignment_pair,priority:2;column:reviewer_id" json:"reviewer_id"`
	Status     AssignmentStatus `gorm:"size:16;not null;default:'assigned'" json:"status"`
	AssignedBy uint             `gorm:"column:assigned_by" json:"assigned_by"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Assignment) TableName() string {
	return "review_assignments"
}

type Recommendation string

const (
	RecommendationRecommended     Recommendation = "recommended"
	RecommendationWithAdjustments Recommendation = "recommended_with_adjustments"
	RecommendationNotRecommended  Recommendation = "not_recommended"
)

func (r Recommendation) Valid() bool {
	switch r {
	case RecommendationRecommended, RecommendationWithAdjustments, RecommendationNotRecommended:
		return true
	}
	return false
}

// Criterion is one scored item of a review.
type Criterion struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Max    float64 `json:"max"`
	Weight float64 `json:"weight"`
}

// Review is one reviewer's evaluation of one proposal. While SubmittedAt is
// nil the review is a mutable draft: OverallScore stays nil and the score
// the reviewer typed in is kept in ProposedScore.
type Review struct {
	ID             uint           `gorm:"primaryKey;column:id" json:"id"`
	AssignmentID   uint           `gorm:"not null;uniqueIndex;column:assignment_id" json:"assignment_id"`
	ProposalID     uint           `gorm:"not null;index;column:proposal_id" json:"proposal_id"`
	ReviewerID     uint           `gorm:"not null;index;column:reviewer_id" json:"reviewer_id"`
	Criteria       datatypes.JSON `gorm:"column:criteria" json:"criteria"`
	Comments       string         `gorm:"type:text" json:"comments"`
	ProposedScore  *float64       `gorm:"column:proposed_score" json:"proposed_score,omitempty"`
	OverallScore   *float64       `gorm:"column:overall_score" json:"overall_score,omitempty"`
	Recommendation Recommendation `gorm:"size:32;column:recommendation" json:"recommendation"`
	SubmittedAt    *time.Time     `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) IsSubmitted() bool {
	return r.SubmittedAt != nil
}

func (r *Review) DecodeCriteria() ([]Criterion, error) {
	if len(r.Criteria) == 0 {
		return nil, nil
	}
	var out []Criterion
	if err := json.Unmarshal(r.Criteria, &out); err != nil {
		return nil, fmt.Errorf("decode criteria: %w", err)
	}
	return out, nil
}

func EncodeCriteria(criteria []Criterion) (datatypes.JSON, error) {
	if criteria == nil {
		criteria = []Criterion{}
	}
	raw, err := json.Marshal(criteria)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// ValidateCriteria checks score ranges and weights.
func ValidateCriteria(criteria []Criterion) error {
	for i, c := range criteria {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("criterion %d has no name", i)
		}
		if c.Max <= 0 {
			return fmt.Errorf("criterion %q must have a positive max", c.Name)
		}
		if c.Score < 0 || c.Score > c.Max {
			return fmt.Errorf("criterion %q score %.2f is outside [0, %.2f]", c.Name, c.Score, c.Max)
		}
		if c.Weight < 0 {
			return fmt.Errorf("criterion %q has a negative weight", c.Name)
		}
	}
	return nil
}

// WeightedScore is the weighted mean of score/max scaled to scale, rounded
// to two decimals.
func WeightedScore(criteria []Criterion, scale float64) (float64, error) {
	if len(criteria) == 0 {
		return 0, errors.New("no criteria to score")
	}
	if err := ValidateCriteria(criteria); err != nil {
		return 0, err
	}
	var sum, weights float64
	for _, c := range criteria {
		sum += c.Weight * (c.Score / c.Max)
		weights += c.Weight
	}
	if weights == 0 {
		return 0, errors.New("criteria weights sum to zero")
	}
	return math.Round(sum/weights*scale*100) / 100, nil
}

type SaveReviewDTO struct {
	Criteria       []Criterion    `json:"criteria"`
	Comments       string         `json:"comments"`
	Recommendation Recommendation `json:"recommendation"`
	OverallScore   *float64       `json:"overall_score,omitempty"`
}

type AssignReviewersDTO struct {
	ReviewerIDs []uint `json:"reviewer_ids" binding:"required"`
}
