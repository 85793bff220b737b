package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/auth"
)

// TokenValidator verifies a bearer token and returns the user id it was issued for.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (int, error)
}

// AuthMiddleware validates the Authorization header and stores the caller as "userID".
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthenticated(c)
			return
		}

		userID, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			abortUnauthenticated(c)
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context) {
	code, message := apperrors.Public(apperrors.ErrUnauthenticated)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message, "code": code})
}
