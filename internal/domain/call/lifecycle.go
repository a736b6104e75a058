package call

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/linskybing/grant-review/pkg/apierr"
)

// GuardContext carries everything a phase guard may inspect. Guards are pure.
type GuardContext struct {
	Call            Call
	Now             time.Time
	AssignmentCount int64
	Override        bool
}

// Guard returns a non-nil error describing the violated precondition.
type Guard func(GuardContext) error

// Phase is one row of the ordered phase table.
type Phase struct {
	Status      Status
	Label       string
	Description string
	Guard       Guard
}

// DefaultPhases is the fixed forward order of a call. Adding a phase means
// adding a row here.
var DefaultPhases = []Phase{
	{Status: StatusDraft, Label: "Draft", Description: "The call is being prepared and is not visible to applicants."},
	{Status: StatusPublished, Label: "Open for submissions", Description: "Applicants can create and submit proposals.", Guard: requirePublishable},
	{Status: StatusClosed, Label: "Submissions closed", Description: "No further proposals are accepted; reviewers can be assigned.", Guard: requireClosingTime},
	{Status: StatusUnderReview, Label: "Under blind review", Description: "Assigned reviewers evaluate proposals by blind code.", Guard: requireAssignments},
	{Status: StatusPreliminaryResult, Label: "Preliminary result", Description: "Preliminary outcomes are published for appeal."},
	{Status: StatusFinalResult, Label: "Final result", Description: "Final decisions are published."},
	{Status: StatusHomologated, Label: "Homologated", Description: "The result is formally ratified."},
	{Status: StatusGranted, Label: "Granted", Description: "Grants are issued to approved proposals."},
}

func requirePublishable(ctx GuardContext) error {
	if strings.TrimSpace(ctx.Call.Title) == "" {
		return errors.New("call title is required")
	}
	return ctx.Call.ValidateWindow()
}

func requireClosingTime(ctx GuardContext) error {
	if ctx.Override {
		return nil
	}
	if ctx.Call.ClosesAt == nil {
		return errors.New("closes_at is not set; a manager override is required")
	}
	if ctx.Now.Before(*ctx.Call.ClosesAt) {
		return fmt.Errorf("submissions close at %s; a manager override is required to close early", ctx.Call.ClosesAt.UTC().Format(time.RFC3339))
	}
	return nil
}

func requireAssignments(ctx GuardContext) error {
	if ctx.AssignmentCount < 1 {
		return errors.New("at least one reviewer assignment is required")
	}
	return nil
}

// Machine validates lifecycle transitions against a phase table.
type Machine struct {
	phases []Phase
	index  map[Status]int
}

func NewMachine(phases []Phase) (*Machine, error) {
	if len(phases) == 0 {
		return nil, errors.New("phase table is empty")
	}
	m := &Machine{
		phases: make([]Phase, len(phases)),
		index:  make(map[Status]int, len(phases)),
	}
	copy(m.phases, phases)
	for i, p := range phases {
		if p.Status == "" || p.Status == StatusCancelled {
			return nil, fmt.Errorf("phase %d has invalid status %q", i, p.Status)
		}
		if _, dup := m.index[p.Status]; dup {
			return nil, fmt.Errorf("phase %q listed twice", p.Status)
		}
		m.index[p.Status] = i
	}
	return m, nil
}

// DefaultMachine builds a machine over DefaultPhases.
func DefaultMachine() *Machine {
	m, err := NewMachine(DefaultPhases)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Machine) Phases() []Phase {
	out := make([]Phase, len(m.phases))
	copy(out, m.phases)
	return out
}

func (m *Machine) Index(s Status) (int, bool) {
	i, ok := m.index[s]
	return i, ok
}

func (m *Machine) Initial() Status {
	return m.phases[0].Status
}

// NextOf returns the phase that follows s, if any.
func (m *Machine) NextOf(s Status) (Status, bool) {
	i, ok := m.index[s]
	if !ok || i+1 >= len(m.phases) {
		return "", false
	}
	return m.phases[i+1].Status, true
}

func (m *Machine) IsTerminal(s Status) bool {
	if s == StatusCancelled {
		return true
	}
	i, ok := m.index[s]
	return ok && i == len(m.phases)-1
}

// AtOrAfter reports whether current has reached target in the phase order.
// A cancelled call has reached nothing.
func (m *Machine) AtOrAfter(current, target Status) bool {
	ci, ok := m.index[current]
	if !ok {
		return false
	}
	ti, ok := m.index[target]
	if !ok {
		return false
	}
	return ci >= ti
}

// Next decides the outcome of moving from current to requested. It never
// mutates anything; the caller persists the returned status.
func (m *Machine) Next(current, requested Status, ctx GuardContext) (Status, error) {
	if ctx.Call.IsCancelled || current == StatusCancelled {
		return "", apierr.InvalidTransition("call %d is cancelled", ctx.Call.ID)
	}
	ci, ok := m.index[current]
	if !ok {
		return "", apierr.InvalidTransition("unknown current status %q", current)
	}
	if requested == StatusCancelled {
		if ci == len(m.phases)-1 {
			return "", apierr.InvalidTransition("call is %s and can no longer be cancelled", current)
		}
		return StatusCancelled, nil
	}
	ri, ok := m.index[requested]
	if !ok {
		return "", apierr.InvalidTransition("unknown target status %q", requested)
	}
	if ri <= ci {
		return "", apierr.InvalidTransition("cannot move from %s back to %s", current, requested)
	}
	if ri != ci+1 {
		return "", apierr.InvalidTransition("cannot skip from %s to %s; next phase is %s", current, requested, m.phases[ci+1].Status)
	}
	if guard := m.phases[ri].Guard; guard != nil {
		if err := guard(ctx); err != nil {
			return "", apierr.InvalidTransition("%s: %v", requested, err)
		}
	}
	return requested, nil
}
