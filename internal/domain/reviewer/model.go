package reviewer

import (
	"time"
	"unicode"
)

// Reviewer is a person registered with an organization to evaluate proposals.
type Reviewer struct {
	ID             uint      `gorm:"primaryKey;column:id" json:"id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_reviewer_org_user,priority:2;column:user_id" json:"user_id"`
	OrganizationID uint      `gorm:"not null;uniqueIndex:idx_reviewer_org_user,priority:1;column:organization_id" json:"organization_id"`
	FullName       string    `gorm:"size:255;not null;column:full_name" json:"full_name"`
	Email          string    `gorm:"size:255;column:email" json:"email"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	Areas          []Area    `gorm:"foreignKey:ReviewerID" json:"areas"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Reviewer) TableName() string {
	return "reviewers"
}

// Area is one declared knowledge-area code of a reviewer.
type Area struct {
	ID         uint   `gorm:"primaryKey;column:id" json:"-"`
	ReviewerID uint   `gorm:"not null;uniqueIndex:idx_reviewer_area,priority:1;column:reviewer_id" json:"-"`
	Code       string `gorm:"size:32;not null;uniqueIndex:idx_reviewer_area,priority:2;column:code" json:"code"`
}

func (Area) TableName() string {
	return "reviewer_areas"
}

func (r *Reviewer) AreaCodes() []string {
	codes := make([]string, 0, len(r.Areas))
	for _, a := range r.Areas {
		codes = append(codes, a.Code)
	}
	return codes
}

type CreateReviewerDTO struct {
	UserID         uint     `json:"user_id" binding:"required"`
	OrganizationID uint     `json:"organization_id" binding:"required"`
	FullName       string   `json:"full_name" binding:"required"`
	Email          string   `json:"email" binding:"omitempty,email"`
	AreaCodes      []string `json:"area_codes"`
}

// NormalizeAreaCode keeps only the digits of a classification code, so
// "1.01.02.00-3" and "10102003" compare equal.
func NormalizeAreaCode(code string) string {
	out := make([]rune, 0, len(code))
	for _, r := range code {
		if unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return string(out)
}
