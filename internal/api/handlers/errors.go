package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/grant-review/pkg/apierr"
	"github.com/linskybing/grant-review/pkg/response"
	"github.com/linskybing/grant-review/pkg/types"
	"github.com/linskybing/grant-review/pkg/utils"
)

// writeError maps service errors to their HTTP status. The error is attached
// to the context with its code so the request log carries it. Unknown errors
// are reported as 500 without leaking their text.
func writeError(c *gin.Context, err error) {
	status, code := apierr.StatusOf(err)
	_ = c.Error(err).SetMeta(code)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.JSON(status, response.ErrorResponse{Error: msg, Code: code})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid input: " + err.Error(), Code: "bad_request"})
}

// actorAndID reads the caller and the named path id; on failure the
// response is already written.
func actorAndID(c *gin.Context, param string) (types.Actor, uint, bool) {
	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Unauthorized"})
		return actor, 0, false
	}
	if param == "" {
		return actor, 0, true
	}
	id, err := utils.ParseIDParam(c, param)
	if err != nil {
		badRequest(c, err)
		return actor, 0, false
	}
	return actor, id, true
}
