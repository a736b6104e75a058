package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/grant-review/pkg/types"
)

var GetClaimsFromContext = func(c *gin.Context) (*types.Claims, error) {
	claimsVal, exists := c.Get("claims")
	if !exists {
		return nil, errors.New("user claims not found in context")
	}

	claims, ok := claimsVal.(*types.Claims)
	if !ok {
		return nil, errors.New("invalid user claims type")
	}

	return claims, nil
}

var GetUserIDFromContext = func(c *gin.Context) (uint, error) {
	claims, err := GetClaimsFromContext(c)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// GetActorFromContext returns the caller identity used for audit attribution.
func GetActorFromContext(c *gin.Context) (types.Actor, error) {
	claims, err := GetClaimsFromContext(c)
	if err != nil {
		return types.Actor{}, err
	}
	return types.Actor{UserID: claims.UserID, Role: claims.Role}, nil
}

func HasRole(claims *types.Claims, roles ...string) bool {
	if claims == nil {
		return false
	}
	if claims.Role == types.RoleAdmin {
		return true
	}
	for _, role := range roles {
		if claims.Role == role {
			return true
		}
	}
	return false
}

var ErrEmptyParameter = errors.New("empty parameter")

func ParseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name + " parameter")
	}
	return uint(id), nil
}

// ParseQueryUintParam returns ErrEmptyParameter when the query value is
// absent.
func ParseQueryUintParam(c *gin.Context, param string) (uint, error) {
	valStr := c.Query(param)
	if valStr == "" {
		return 0, ErrEmptyParameter
	}
	valUint64, err := strconv.ParseUint(valStr, 10, 64)
	return uint(valUint64), err
}
