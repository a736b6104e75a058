package testutils

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/linskybing/grant-review/pkg/types"
)

const TestJWTSecret = "test-secret"

func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// Token signs a short-lived access token for tests.
func Token(userID uint, role string) string {
	claims := &types.Claims{
		UserID:   userID,
		Username: role,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestJWTSecret))
	if err != nil {
		panic(err)
	}
	return signed
}

// Bearer returns an Authorization header value.
func Bearer(userID uint, role string) string {
	return "Bearer " + Token(userID, role)
}
