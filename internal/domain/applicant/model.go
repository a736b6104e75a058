package applicant

import "time"

// Applicant is the identity profile of a proposal owner. ID equals the
// user id carried in access tokens.
type Applicant struct {
	ID          uint      `gorm:"primaryKey;autoIncrement:false;column:id" json:"id"`
	FullName    string    `gorm:"size:255;not null;column:full_name" json:"full_name"`
	Email       string    `gorm:"size:255;not null;column:email" json:"email"`
	Institution string    `gorm:"size:255;column:institution" json:"institution"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Applicant) TableName() string {
	return "applicants"
}

type UpsertApplicantDTO struct {
	FullName    string `json:"full_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Institution string `json:"institution"`
}
