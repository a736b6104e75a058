package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/linskybing/grant-review/internal/api/handlers"
	"github.com/linskybing/grant-review/internal/api/middleware"
	"github.com/linskybing/grant-review/pkg/types"
)

func RegisterRoutes(r *gin.Engine, h *handlers.Handlers) {
	manager := middleware.RequireRole(types.RoleManager)
	reviewer := middleware.RequireRole(types.RoleReviewer)
	applicant := middleware.RequireRole(types.RoleApplicant)
	staff := middleware.RequireRole(types.RoleManager, types.RoleReviewer)

	auth := r.Group("/")
	auth.Use(middleware.JWTAuthMiddleware())
	{
		auth.GET("/ws/calls/:id/events", h.Events.Stream)

		calls := auth.Group("/calls")
		{
			calls.GET("", h.Call.ListCalls)
			calls.GET("/:id", h.Call.GetCall)
			calls.GET("/:id/timeline", h.Call.Timeline)
			calls.POST("", manager, h.Call.CreateCall)
			calls.POST("/:id/transitions", manager, h.Call.Transition)

			calls.GET("/:id/proposals", staff, h.Proposal.ListBlind)
			calls.POST("/:id/proposals", applicant, h.Proposal.Create)
		}

		auth.PUT("/applicants/me", applicant, h.Proposal.UpsertProfile)

		proposals := auth.Group("/proposals")
		{
			proposals.GET("/mine", applicant, h.Proposal.ListMine)
			proposals.PUT("/:id", applicant, h.Proposal.UpdateDraft)
			proposals.POST("/:id/submit", applicant, h.Proposal.Submit)
			proposals.POST("/:id/withdraw", applicant, h.Proposal.Withdraw)
			proposals.POST("/:id/attachments", applicant, h.Proposal.UploadAttachment)
			proposals.GET("/:id/attachments", h.Proposal.ListAttachments)

			proposals.GET("/:id/reviewer-candidates", manager, h.Assignment.Candidates)
			proposals.POST("/:id/assignments", manager, h.Assignment.Assign)

			proposals.GET("/:id/aggregate", manager, h.Decision.Aggregate)
			proposals.GET("/:id/decision", manager, h.Decision.Get)
			proposals.POST("/:id/decision", manager, h.Decision.Record)
		}

		reviewers := auth.Group("/reviewers", manager)
		{
			reviewers.GET("", h.Reviewer.List)
			reviewers.POST("", h.Reviewer.Register)
		}

		assignments := auth.Group("/assignments", reviewer)
		{
			assignments.GET("/mine", h.Review.MyAssignments)
			assignments.PUT("/:id/review", h.Review.SaveDraft)
			assignments.POST("/:id/review/submit", h.Review.Submit)
		}

		auth.POST("/reveals", manager, h.Reveal.Reveal)
		auth.GET("/audit/entries", manager, h.Audit.Query)
	}
}
