package handlers

import (
	"github.com/linskybing/grant-review/internal/application"
	"github.com/linskybing/grant-review/internal/events"
	"github.com/linskybing/grant-review/pkg/logger"
)

type Handlers struct {
	Call       *CallHandler
	Proposal   *ProposalHandler
	Assignment *AssignmentHandler
	Review     *ReviewHandler
	Decision   *DecisionHandler
	Reveal     *RevealHandler
	Audit      *AuditHandler
	Reviewer   *ReviewerHandler
	Events     *EventsHandler
}

func New(svc *application.Services, hub *events.Hub, allowedOrigins []string, log *logger.Logger) *Handlers {
	return &Handlers{
		Call:       NewCallHandler(svc.Lifecycle),
		Proposal:   NewProposalHandler(svc.Proposal),
		Assignment: NewAssignmentHandler(svc.Assignment),
		Review:     NewReviewHandler(svc.Review),
		Decision:   NewDecisionHandler(svc.Decision),
		Reveal:     NewRevealHandler(svc.Reveal),
		Audit:      NewAuditHandler(svc.Audit),
		Reviewer:   NewReviewerHandler(svc.Reviewer),
		Events:     NewEventsHandler(hub, allowedOrigins, log),
	}
}
