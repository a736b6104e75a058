package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/grant-review/internal/application"
	"github.com/linskybing/grant-review/internal/domain/review"
)

type AssignmentHandler struct {
	svc *application.AssignmentService
}

func NewAssignmentHandler(svc *application.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{svc: svc}
}

// Candidates godoc
// @Summary Rank reviewers for a proposal
// @Tags assignments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Proposal ID"
// @Success 200 {object} review.Ranking
// @Router /proposals/{id}/reviewer-candidates [get]
func (h *AssignmentHandler) Candidates(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	ranking, err := h.svc.Candidates(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ranking)
}

// Assign godoc
// @Summary Assign reviewers to a proposal
// @Description Idempotent per (proposal, reviewer) pair. Only new pairs are notified.
// @Tags assignments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Proposal ID"
// @Param input body review.AssignReviewersDTO true "Reviewer ids"
// @Success 200 {object} application.AssignResult
// @Failure 409 {object} response.ErrorResponse "Call has not closed"
// @Router /proposals/{id}/assignments [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	var input review.AssignReviewersDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.Assign(c.Request.Context(), actor, id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
