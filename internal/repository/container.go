package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type Repos struct {
	Audit      AuditRepo
	Call       CallRepo
	Proposal   ProposalRepo
	Applicant  ApplicantRepo
	Reviewer   ReviewerRepo
	Assignment AssignmentRepo
	Review     ReviewRepo
	Decision   DecisionRepo
	Reveal     RevealRepo

	db *gorm.DB
}

func NewRepositories(db *gorm.DB) *Repos {
	return &Repos{
		Audit:      NewAuditRepo(db),
		Call:       NewCallRepo(db),
		Proposal:   NewProposalRepo(db),
		Applicant:  NewApplicantRepo(db),
		Reviewer:   NewReviewerRepo(db),
		Assignment: NewAssignmentRepo(db),
		Review:     NewReviewRepo(db),
		Decision:   NewDecisionRepo(db),
		Reveal:     NewRevealRepo(db),
		db:         db,
	}
}

func (r *Repos) WithTx(tx *gorm.DB) *Repos {
	return &Repos{
		Audit:      r.Audit.WithTx(tx),
		Call:       r.Call.WithTx(tx),
		Proposal:   r.Proposal.WithTx(tx),
		Applicant:  r.Applicant.WithTx(tx),
		Reviewer:   r.Reviewer.WithTx(tx),
		Assignment: r.Assignment.WithTx(tx),
		Review:     r.Review.WithTx(tx),
		Decision:   r.Decision.WithTx(tx),
		Reveal:     r.Reveal.WithTx(tx),
		db:         tx,
	}
}

// ExecTx runs fn inside one database transaction. Any error returned by fn
// rolls back every write made through the transactional repos.
func (r *Repos) ExecTx(ctx context.Context, fn func(*Repos) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
// Drivers opened with TranslateError return gorm.ErrDuplicatedKey; the
// message check covers connections opened without it.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

// IsNotFound reports whether err is gorm's missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
