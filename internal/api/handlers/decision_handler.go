package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/grant-review/internal/application"
	"github.com/linskybing/grant-review/internal/domain/decision"
)

type DecisionHandler struct {
	svc *application.DecisionService
}

func NewDecisionHandler(svc *application.DecisionService) *DecisionHandler {
	return &DecisionHandler{svc: svc}
}

// Aggregate godoc
// @Summary Average score and disagreement flag of a proposal
// @Tags decisions
// @Security BearerAuth
// @Produce json
// @Param id path int true "Proposal ID"
// @Success 200 {object} decision.Summary
// @Router /proposals/{id}/aggregate [get]
func (h *DecisionHandler) Aggregate(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	summary, err := h.svc.Aggregate(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Get godoc
// @Summary Recorded decision of a proposal
// @Tags decisions
// @Security BearerAuth
// @Produce json
// @Param id path int true "Proposal ID"
// @Success 200 {object} decision.Decision
// @Failure 404 {object} response.ErrorResponse
// @Router /proposals/{id}/decision [get]
func (h *DecisionHandler) Get(c *gin.Context) {
	_, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	d, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Record godoc
// @Summary Record the final decision on a proposal
// @Tags decisions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Proposal ID"
// @Param input body decision.RecordDecisionDTO true "Decision"
// @Success 201 {object} decision.Decision
// @Failure 409 {object} response.ErrorResponse "Premature or already decided"
// @Router /proposals/{id}/decision [post]
func (h *DecisionHandler) Record(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	var input decision.RecordDecisionDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.svc.Record(c.Request.Context(), actor, id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}
