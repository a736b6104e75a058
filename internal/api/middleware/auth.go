package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/linskybing/grant-review/pkg/logger"
	"github.com/linskybing/grant-review/pkg/response"
	"github.com/linskybing/grant-review/pkg/utils"
)

// RequireRole lets the request through when the caller holds one of roles.
// Admins pass every role check.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := utils.GetClaimsFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Invalid token claims"})
			return
		}
		if !utils.HasRole(claims, roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorResponse{
				Error: "requires role " + strings.Join(roles, " or "),
				Code:  "forbidden",
			})
			return
		}
		c.Next()
	}
}

// LoggingMiddleware writes one structured line per request. Query strings
// are left out since they may carry tokens.
func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if uid, err := utils.GetUserIDFromContext(c); err == nil {
			kv = append(kv, "user_id", uid)
		}
		if last := c.Errors.Last(); last != nil {
			kv = append(kv, "error", last.Error())
			if code, ok := last.Meta.(string); ok {
				kv = append(kv, "code", code)
			}
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", kv...)
		case status >= http.StatusBadRequest:
			log.Warn("request rejected", kv...)
		default:
			log.Info("request", kv...)
		}
	}
}

// ParseOrigins splits a comma separated origin list. Entries ending in ":"
// match any port of that host.
func ParseOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// CORSMiddleware allows the configured origins. Websocket upgrades skip
// CORS; the events handler checks the origin itself.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowOriginFunc:  func(origin string) bool { return OriginAllowed(origins, origin) },
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	corsHandler := cors.New(config)
	return func(c *gin.Context) {
		upgrade := c.GetHeader("Upgrade")
		if strings.EqualFold(upgrade, "websocket") {
			c.Next()
			return
		}
		corsHandler(c)
	}
}

func OriginAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
		if strings.HasSuffix(a, ":") && strings.HasPrefix(origin, a) {
			return true
		}
	}
	return false
}
