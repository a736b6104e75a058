package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/grant-review/internal/application"
	"github.com/linskybing/grant-review/internal/domain/audit"
	"github.com/linskybing/grant-review/pkg/response"
	"github.com/linskybing/grant-review/pkg/utils"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

type AuditHandler struct {
	svc *application.AuditService
}

func NewAuditHandler(svc *application.AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// Query godoc
// @Summary      Query the audit trail
// @Description  Entries in causal order, filtered by optional parameters. Applicant actor ids are masked for non-admins.
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        call_id     query  uint    false  "Call ID"
// @Param        entity_type query  string  false  "Entity type" example("proposal")
// @Param        entity_id   query  uint    false  "Entity ID"
// @Param        action      query  string  false  "Action" example("call.transition")
// @Param        actor_id    query  uint    false  "Actor user ID"
// @Param        start_time  query  string  false  "Start time in RFC3339 format" example("2026-01-01T00:00:00Z")
// @Param        end_time    query  string  false  "End time in RFC3339 format" example("2026-02-01T00:00:00Z")
// @Param        limit       query  int     false  "Max number of records to return (default 100, max 1000)"
// @Param        offset      query  int     false  "Offset for pagination (default 0)"
// @Success      200 {object}  response.ListResponse[audit.Entry]
// @Failure      400 {object}  response.ErrorResponse "Invalid query parameters"
// @Router       /audit/entries [get]
func (h *AuditHandler) Query(c *gin.Context) {
	actor, _, ok := actorAndID(c, "")
	if !ok {
		return
	}
	var params audit.QueryParams

	for name, dst := range map[string]**uint{
		"call_id":   &params.CallID,
		"entity_id": &params.EntityID,
		"actor_id":  &params.ActorID,
	} {
		v, err := utils.ParseQueryUintParam(c, name)
		if err != nil {
			if !errors.Is(err, utils.ErrEmptyParameter) {
				c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid " + name})
				return
			}
			continue
		}
		*dst = &v
	}

	if et := c.Query("entity_type"); et != "" {
		params.EntityType = &et
	}
	if act := c.Query("action"); act != "" {
		params.Action = &act
	}

	if start := c.Query("start_time"); start != "" {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid start_time"})
			return
		}
		params.StartTime = &t
	}
	if end := c.Query("end_time"); end != "" {
		t, err := time.Parse(time.RFC3339, end)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid end_time"})
			return
		}
		params.EndTime = &t
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAuditLimit)))
	if err != nil || limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	params.Limit = limit
	params.Offset = offset

	entries, err := h.svc.Query(c.Request.Context(), actor, params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewList(entries))
}
