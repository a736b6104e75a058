package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/grant-review/internal/application"
	"github.com/linskybing/grant-review/internal/domain/review"
	"github.com/linskybing/grant-review/pkg/response"
)

type ReviewHandler struct {
	svc *application.ReviewService
}

func NewReviewHandler(svc *application.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// MyAssignments godoc
// @Summary Assignments of the calling reviewer
// @Tags reviews
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.ListResponse[application.AssignmentView]
// @Router /assignments/mine [get]
func (h *ReviewHandler) MyAssignments(c *gin.Context) {
	actor, _, ok := actorAndID(c, "")
	if !ok {
		return
	}
	views, err := h.svc.MyAssignments(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewList(views))
}

// SaveDraft godoc
// @Summary Save a review draft
// @Tags reviews
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Assignment ID"
// @Param input body review.SaveReviewDTO true "Review"
// @Success 200 {object} review.Review
// @Router /assignments/{id}/review [put]
func (h *ReviewHandler) SaveDraft(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	var input review.SaveReviewDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	rv, err := h.svc.SaveDraft(c.Request.Context(), actor, id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rv)
}

// Submit godoc
// @Summary Submit a review; it cannot change afterwards
// @Tags reviews
// @Security BearerAuth
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} review.Review
// @Router /assignments/{id}/review/submit [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	rv, err := h.svc.Submit(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rv)
}
