package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/linskybing/grant-review/internal/config"
	"github.com/linskybing/grant-review/pkg/response"
	"github.com/linskybing/grant-review/pkg/types"
)

var jwtKey []byte

// Init sets the JWT signing key.
func Init() {
	jwtKey = []byte(config.JwtSecret)
}

// GenerateToken issues a signed token carrying the caller's platform role.
func GenerateToken(userID uint, username, role string, expireDuration time.Duration) (string, error) {
	claims := &types.Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expireDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    config.Issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtKey)
}

// ParseToken validates and extracts claims.
func ParseToken(tokenStr string) (*types.Claims, error) {
	claims := &types.Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return jwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}

// JWTAuthMiddleware validates Bearer token in Authorization header or cookie.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Authorization header format must be Bearer {token}"})
				return
			}
			tokenStr = parts[1]
		} else if cookie, err := c.Cookie("token"); err == nil {
			tokenStr = cookie
		} else if q := c.Query("token"); q != "" && strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			// browsers cannot set headers on websocket upgrades
			tokenStr = q
		} else {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Authorization required (header or cookie)"})
			return
		}

		claims, err := ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Invalid token: " + err.Error()})
			return
		}

		// Explicitly enforce expiration to avoid lax parser behavior
		if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "token expired"})
			return
		}
		if claims.Role == "" || claims.Role == types.RoleSystem {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "token carries no usable role"})
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}
