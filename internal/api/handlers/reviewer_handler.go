package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/grant-review/internal/application"
	"github.com/linskybing/grant-review/internal/domain/reviewer"
	"github.com/linskybing/grant-review/pkg/response"
	"github.com/linskybing/grant-review/pkg/utils"
)

type ReviewerHandler struct {
	svc *application.ReviewerService
}

func NewReviewerHandler(svc *application.ReviewerService) *ReviewerHandler {
	return &ReviewerHandler{svc: svc}
}

// Register godoc
// @Summary Register a reviewer in an organization's pool
// @Tags reviewers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body reviewer.CreateReviewerDTO true "Reviewer"
// @Success 201 {object} reviewer.Reviewer
// @Router /reviewers [post]
func (h *ReviewerHandler) Register(c *gin.Context) {
	actor, _, ok := actorAndID(c, "")
	if !ok {
		return
	}
	var input reviewer.CreateReviewerDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	r, err := h.svc.Register(c.Request.Context(), actor, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// List godoc
// @Summary Reviewer pool of an organization
// @Tags reviewers
// @Security BearerAuth
// @Produce json
// @Param organization_id query int true "Organization ID"
// @Success 200 {object} response.ListResponse[reviewer.Reviewer]
// @Router /reviewers [get]
func (h *ReviewerHandler) List(c *gin.Context) {
	actor, _, ok := actorAndID(c, "")
	if !ok {
		return
	}
	orgID, err := utils.ParseQueryUintParam(c, "organization_id")
	if err != nil {
		if errors.Is(err, utils.ErrEmptyParameter) {
			err = errors.New("organization_id is required")
		}
		badRequest(c, err)
		return
	}
	pool, err := h.svc.List(c.Request.Context(), actor, orgID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewList(pool))
}
