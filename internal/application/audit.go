package application

import (
	"context"

	"github.com/linskybing/grant-review/internal/domain/audit"
	"github.com/linskybing/grant-review/internal/events"
	"github.com/linskybing/grant-review/internal/repository"
	"github.com/linskybing/grant-review/pkg/apierr"
	"github.com/linskybing/grant-review/pkg/types"
)

type AuditService struct {
	*deps
}

// record appends one audit entry through repos, which is normally the
// transactional set so the entry commits or rolls back with the action.
func (d *deps) record(ctx context.Context, repos *repository.Repos, actor types.Actor, callID uint, entityType string, entityID uint, action string, meta map[string]interface{}) error {
	entry := &audit.Entry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Metadata:   meta,
		CreatedAt:  d.now(),
	}
	if callID != 0 {
		entry.CallID = &callID
	}
	return repos.Audit.Append(ctx, entry)
}

// publish emits evt after commit. Failures are logged only.
func (d *deps) publish(ctx context.Context, evt events.Event) {
	if evt.At.IsZero() {
		evt.At = d.now()
	}
	if err := d.events.Publish(ctx, evt); err != nil {
		d.log.Warn("event publish failed", "type", evt.Type, "call_id", evt.CallID, "error", err)
	}
}

// Query returns audit entries in causal order. Applicant actor ids are
// masked for everyone but admins so the trail cannot unblind proposals.
func (s *AuditService) Query(ctx context.Context, actor types.Actor, params audit.QueryParams) ([]audit.Entry, error) {
	if !actor.IsManager() {
		return nil, apierr.Forbidden("audit trail is restricted to managers")
	}
	entries, err := s.Repos.Audit.Query(ctx, params)
	if err != nil {
		return nil, err
	}
	if actor.Role == types.RoleAdmin {
		return entries, nil
	}
	for i := range entries {
		if entries[i].ActorRole == types.RoleApplicant {
			entries[i].ActorID = 0
		}
	}
	return entries, nil
}
