package application

import (
	"context"
	"strings"

	"github.com/linskybing/grant-review/internal/domain/reviewer"
	"github.com/linskybing/grant-review/internal/repository"
	"github.com/linskybing/grant-review/pkg/apierr"
	"github.com/linskybing/grant-review/pkg/types"
)

// ReviewerService manages the reviewer pool of an organization.
type ReviewerService struct {
	*deps
}

func (s *ReviewerService) Register(ctx context.Context, actor types.Actor, input reviewer.CreateReviewerDTO) (*reviewer.Reviewer, error) {
	if !actor.IsManager() {
		return nil, apierr.Forbidden("only managers can register reviewers")
	}
	name := strings.TrimSpace(input.FullName)
	if name == "" {
		return nil, apierr.Validation("full_name is required")
	}
	r := &reviewer.Reviewer{
		UserID:         input.UserID,
		OrganizationID: input.OrganizationID,
		FullName:       name,
		Email:          strings.TrimSpace(input.Email),
		Active:         true,
	}
	seen := map[string]bool{}
	for _, code := range input.AreaCodes {
		code = strings.TrimSpace(code)
		if reviewer.NormalizeAreaCode(code) == "" {
			return nil, apierr.Validation("area code %q has no digits", code)
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		r.Areas = append(r.Areas, reviewer.Area{Code: code})
	}
	if err := s.Repos.Reviewer.Create(ctx, r); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, apierr.Validation("user %d is already a reviewer of organization %d", input.UserID, input.OrganizationID)
		}
		return nil, err
	}
	return r, nil
}

func (s *ReviewerService) List(ctx context.Context, actor types.Actor, organizationID uint) ([]reviewer.Reviewer, error) {
	if !actor.IsManager() {
		return nil, apierr.Forbidden("only managers can list reviewers")
	}
	return s.Repos.Reviewer.ListByOrganization(ctx, organizationID)
}
