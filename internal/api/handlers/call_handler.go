package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/grant-review/internal/application"
	"github.com/linskybing/grant-review/internal/domain/call"
	"github.com/linskybing/grant-review/pkg/response"
)

type CallHandler struct {
	svc *application.LifecycleService
}

func NewCallHandler(svc *application.LifecycleService) *CallHandler {
	return &CallHandler{svc: svc}
}

// CreateCall godoc
// @Summary Create a grant call in draft
// @Tags calls
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body call.CreateCallDTO true "Call"
// @Success 201 {object} call.Call
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /calls [post]
func (h *CallHandler) CreateCall(c *gin.Context) {
	actor, _, ok := actorAndID(c, "")
	if !ok {
		return
	}
	var input call.CreateCallDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.svc.CreateCall(c.Request.Context(), actor, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetCall godoc
// @Summary Get a call
// @Tags calls
// @Security BearerAuth
// @Produce json
// @Param id path int true "Call ID"
// @Success 200 {object} call.Call
// @Failure 404 {object} response.ErrorResponse
// @Router /calls/{id} [get]
func (h *CallHandler) GetCall(c *gin.Context) {
	_, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	got, err := h.svc.GetCall(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, got)
}

// ListCalls godoc
// @Summary List calls of an organization
// @Tags calls
// @Security BearerAuth
// @Produce json
// @Param organization_id query int false "Organization ID"
// @Success 200 {object} response.ListResponse[call.Call]
// @Router /calls [get]
func (h *CallHandler) ListCalls(c *gin.Context) {
	var orgID uint64
	if raw := c.Query("organization_id"); raw != "" {
		var err error
		if orgID, err = strconv.ParseUint(raw, 10, 64); err != nil {
			badRequest(c, err)
			return
		}
	}
	calls, err := h.svc.ListCalls(c.Request.Context(), uint(orgID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewList(calls))
}

// Transition godoc
// @Summary Move a call to another lifecycle status
// @Tags calls
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Call ID"
// @Param input body call.TransitionDTO true "Target status"
// @Success 200 {object} call.Call
// @Failure 409 {object} response.ErrorResponse "Invalid transition"
// @Router /calls/{id}/transitions [post]
func (h *CallHandler) Transition(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	var input call.TransitionDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.svc.Transition(c.Request.Context(), actor, id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Timeline godoc
// @Summary Phase timeline of a call
// @Tags calls
// @Security BearerAuth
// @Produce json
// @Param id path int true "Call ID"
// @Success 200 {object} response.ListResponse[call.TimelineItem]
// @Router /calls/{id}/timeline [get]
func (h *CallHandler) Timeline(c *gin.Context) {
	_, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	items, err := h.svc.Timeline(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewList(items))
}
