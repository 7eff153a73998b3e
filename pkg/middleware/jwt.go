package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"pgfinder/pg-api/internal/apperr"
	"pgfinder/pg-api/internal/model"
	"pgfinder/pg-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type UserLookup interface {
	ByID(ctx context.Context, id string) (*model.User, error)
}

// NewJWTMiddleware authenticates "Authorization: Bearer <token>" requests.
// On success userID and user are set on the context.
func NewJWTMiddleware(tokens TokenVerifier, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := RequestID(c)

		header := c.GetHeader("Authorization")
		tokenStr, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(tokenStr) == "" {
			abort(c, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		userID, err := tokens.Verify(strings.TrimSpace(tokenStr))
		if err != nil {
			if errors.Is(err, security.ErrTokenExpired) {
				abort(c, http.StatusUnauthorized, "Authorization token expired. Please log in again")
				return
			}

			abort(c, http.StatusUnauthorized, "Authorization token invalid")
			return
		}

		// Tokens outlive deleted accounts, so the user has to still exist
		user, err := users.ByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				abort(c, http.StatusUnauthorized, "User not found")
				return
			}

			abort(c, http.StatusInternalServerError, "Internal server error")
			zap.L().Error("Failed to check if user exists", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("userID", user.ID)
		c.Set("user", user)
		c.Next()
	}
}

// CurrentUser returns the user set by NewJWTMiddleware.
func CurrentUser(c *gin.Context) *model.User {
	u, _ := c.Get("user")
	user, _ := u.(*model.User)
	return user
}

// RequireOwner must run after NewJWTMiddleware.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsOwner() {
			abort(c, http.StatusForbidden, "Access denied. Owner privileges required.")
			return
		}

		c.Next()
	}
}
