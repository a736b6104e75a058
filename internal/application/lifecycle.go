package application

import (
	"context"
	"errors"
	"strings"

	"github.com/linskybing/grant-review/internal/domain/audit"
	"github.com/linskybing/grant-review/internal/domain/call"
	"github.com/linskybing/grant-review/internal/events"
	"github.com/linskybing/grant-review/internal/repository"
	"github.com/linskybing/grant-review/pkg/apierr"
	"github.com/linskybing/grant-review/pkg/types"
)

type LifecycleService struct {
	*deps
}

func (s *LifecycleService) CreateCall(ctx context.Context, actor types.Actor, input call.CreateCallDTO) (*call.Call, error) {
	if !actor.IsManager() {
		return nil, apierr.Forbidden("only managers can create calls")
	}
	c := &call.Call{
		OrganizationID:  input.OrganizationID,
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		LifecycleStatus: s.machine.Initial(),
		OpensAt:         input.OpensAt,
		ClosesAt:        input.ClosesAt,
		CreatedBy:       actor.UserID,
	}
	if c.Title == "" {
		return nil, apierr.Validation("title is required")
	}
	if err := c.ValidateWindow(); err != nil {
		return nil, apierr.Validation("%v", err)
	}

	err := s.Repos.ExecTx(ctx, func(tx *repository.Repos) error {
		if err := tx.Call.Create(ctx, c); err != nil {
			return err
		}
		return s.record(ctx, tx, actor, c.ID, audit.EntityCall, c.ID, audit.ActionCallCreated, map[string]interface{}{
			audit.MetaToStatus: string(c.LifecycleStatus),
		})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *LifecycleService) GetCall(ctx context.Context, id uint) (*call.Call, error) {
	c, err := s.Repos.Call.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "call", id)
	}
	return &c, nil
}

func (s *LifecycleService) ListCalls(ctx context.Context, organizationID uint) ([]call.Call, error) {
	return s.Repos.Call.ListByOrganization(ctx, organizationID)
}

// Transition advances a call one phase or cancels it. The status update and
// its audit entry commit together; a concurrent change makes this call
// fail with an invalid transition instead of overwriting it.
func (s *LifecycleService) Transition(ctx context.Context, actor types.Actor, callID uint, input call.TransitionDTO) (*call.Call, error) {
	if !actor.IsManager() {
		return nil, apierr.Forbidden("only managers can change the lifecycle of a call")
	}

	var updated call.Call
	var from call.Status
	err := s.Repos.ExecTx(ctx, func(tx *repository.Repos) error {
		c, err := tx.Call.GetByID(ctx, callID)
		if err != nil {
			return notFoundOr(err, "call", callID)
		}
		count, err := tx.Assignment.CountByCall(ctx, callID)
		if err != nil {
			return err
		}
		target, err := s.machine.Next(c.LifecycleStatus, input.TargetStatus, call.GuardContext{
			Call:            c,
			Now:             s.now(),
			AssignmentCount: count,
			Override:        input.Override,
		})
		if err != nil {
			return err
		}

		ok, err := tx.Call.CompareAndSetStatus(ctx, c, target)
		if err != nil {
			return err
		}
		if !ok {
			return apierr.InvalidTransition("call %d was modified concurrently; reload and retry", callID)
		}

		meta := map[string]interface{}{
			audit.MetaFromStatus: string(c.LifecycleStatus),
			audit.MetaToStatus:   string(target),
		}
		if input.Override {
			meta["override"] = true
		}
		if err := s.record(ctx, tx, actor, callID, audit.EntityCall, callID, audit.ActionCallTransition, meta); err != nil {
			return err
		}

		from = c.LifecycleStatus
		updated, err = tx.Call.GetByID(ctx, callID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:   audit.ActionCallTransition,
		CallID: callID,
		Payload: map[string]interface{}{
			audit.MetaFromStatus: from,
			audit.MetaToStatus:   updated.LifecycleStatus,
		},
	})
	return &updated, nil
}

// Timeline replays the call's transition entries against the phase table.
func (s *LifecycleService) Timeline(ctx context.Context, callID uint) ([]call.TimelineItem, error) {
	c, err := s.Repos.Call.GetByID(ctx, callID)
	if err != nil {
		return nil, notFoundOr(err, "call", callID)
	}
	entries, err := s.Repos.Audit.ListCallTransitions(ctx, callID)
	if err != nil {
		return nil, err
	}
	records := make([]call.TransitionRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, call.TransitionRecord{
			FromStatus: call.Status(e.MetaString(audit.MetaFromStatus)),
			ToStatus:   call.Status(e.MetaString(audit.MetaToStatus)),
			At:         e.CreatedAt,
			Seq:        e.ID,
		})
	}
	return call.BuildTimeline(s.machine.Phases(), c.LifecycleStatus, records, c.OpensAt, c.ClosesAt), nil
}

// CloseDueCalls moves every published call whose closing time passed to
// closed, acting as the system. It returns how many calls were closed.
func (s *LifecycleService) CloseDueCalls(ctx context.Context) (int, error) {
	due, err := s.Repos.Call.ListDueForClosing(ctx, s.now())
	if err != nil {
		return 0, err
	}
	closed := 0
	for _, c := range due {
		_, err := s.Transition(ctx, types.SystemActor, c.ID, call.TransitionDTO{TargetStatus: call.StatusClosed})
		if err != nil {
			if errors.Is(err, apierr.ErrInvalidTransition) {
				s.log.Info("auto-close skipped", "call_id", c.ID, "reason", err.Error())
				continue
			}
			return closed, err
		}
		closed++
	}
	return closed, nil
}

// notFoundOr maps gorm's missing-record error to a typed not-found error.
func notFoundOr(err error, entity string, id any) error {
	if repository.IsNotFound(err) {
		return apierr.NotFound(entity, id)
	}
	return err
}
