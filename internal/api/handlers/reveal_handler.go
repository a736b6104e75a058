package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/grant-review/internal/application"
	"github.com/linskybing/grant-review/internal/domain/reveal"
	"github.com/linskybing/grant-review/pkg/response"
)

type RevealHandler struct {
	svc *application.RevealService
}

func NewRevealHandler(svc *application.RevealService) *RevealHandler {
	return &RevealHandler{svc: svc}
}

// Reveal godoc
// @Summary Reveal the applicants behind a batch of proposals
// @Description The batch is rejected as a whole if any proposal is unknown or its call has not closed.
// @Tags reveals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body reveal.RevealDTO true "Proposal ids and reason"
// @Success 200 {object} response.ListResponse[reveal.Identity]
// @Failure 409 {object} response.ErrorResponse "Premature reveal"
// @Router /reveals [post]
func (h *RevealHandler) Reveal(c *gin.Context) {
	actor, _, ok := actorAndID(c, "")
	if !ok {
		return
	}
	var input reveal.RevealDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	ids, err := h.svc.Reveal(c.Request.Context(), actor, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewList(ids))
}
