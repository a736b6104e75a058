package events

import (
	"context"
	"time"
)

// Event is a workflow notification pushed to live subscribers of a call.
// Payloads carry blind codes and statuses only, never applicant identity.
type Event struct {
	Type       string                 `json:"type"`
	CallID     uint                   `json:"call_id"`
	ProposalID uint                   `json:"proposal_id,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	At         time.Time              `json:"at"`
}

// Publisher delivers events after the producing transaction committed.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
