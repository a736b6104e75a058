package call

import "time"

type PhaseState string

const (
	PhaseCompleted PhaseState = "completed"
	PhaseCurrent   PhaseState = "current"
	PhaseFuture    PhaseState = "future"
)

// TransitionRecord is the slice of an audit entry the timeline needs.
// Seq breaks ties between records with the same timestamp.
type TransitionRecord struct {
	FromStatus Status
	ToStatus   Status
	At         time.Time
	Seq        uint
}

type TimelineItem struct {
	Status      Status     `json:"status"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	State       PhaseState `json:"state"`
	At          *time.Time `json:"at,omitempty"`
	// Inferred is set when At comes from the call's schedule rather than
	// from a recorded transition.
	Inferred bool `json:"inferred"`
}

// BuildTimeline reconstructs the phase timeline of a call from its recorded
// transitions. It is deterministic and has no side effects.
func BuildTimeline(phases []Phase, current Status, records []TransitionRecord, opensAt, closesAt *time.Time) []TimelineItem {
	latest := latestByTarget(records)

	reached := -1
	cancelled := current == StatusCancelled
	if cancelled {
		if rec, ok := latest[StatusCancelled]; ok {
			reached = indexOf(phases, rec.FromStatus)
		}
	} else {
		reached = indexOf(phases, current)
	}

	items := make([]TimelineItem, 0, len(phases)+1)
	for i, p := range phases {
		item := TimelineItem{
			Status:      p.Status,
			Label:       p.Label,
			Description: p.Description,
		}
		switch {
		case i < reached, cancelled && i == reached:
			item.State = PhaseCompleted
		case i == reached:
			item.State = PhaseCurrent
		default:
			item.State = PhaseFuture
		}
		if rec, ok := latest[p.Status]; ok {
			at := rec.At
			item.At = &at
		} else if fallback := scheduledAt(p.Status, opensAt, closesAt); fallback != nil {
			at := *fallback
			item.At = &at
			item.Inferred = true
		}
		items = append(items, item)
	}

	if cancelled {
		item := TimelineItem{
			Status:      StatusCancelled,
			Label:       "Cancelled",
			Description: "The call was cancelled.",
			State:       PhaseCurrent,
		}
		if rec, ok := latest[StatusCancelled]; ok {
			at := rec.At
			item.At = &at
		}
		items = append(items, item)
	}
	return items
}

func latestByTarget(records []TransitionRecord) map[Status]TransitionRecord {
	latest := make(map[Status]TransitionRecord, len(records))
	for _, rec := range records {
		prev, ok := latest[rec.ToStatus]
		if !ok || rec.At.After(prev.At) || (rec.At.Equal(prev.At) && rec.Seq > prev.Seq) {
			latest[rec.ToStatus] = rec
		}
	}
	return latest
}

func scheduledAt(s Status, opensAt, closesAt *time.Time) *time.Time {
	switch s {
	case StatusPublished:
		return opensAt
	case StatusClosed:
		return closesAt
	}
	return nil
}

func indexOf(phases []Phase, s Status) int {
	for i, p := range phases {
		if p.Status == s {
			return i
		}
	}
	return -1
}
