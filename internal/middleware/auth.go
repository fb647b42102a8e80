package middleware

import (
	"context"
	"strings"

	"github.com/JonnyWalker81/moodtrack/backend/internal/apierror"
	"github.com/JonnyWalker81/moodtrack/backend/internal/logger"
	"github.com/JonnyWalker81/moodtrack/backend/pkg/supabase"
	"github.com/gin-gonic/gin"
)

// TokenVerifier resolves a bearer token to the user it was issued to
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*supabase.User, error)
}

// Auth verifies the bearer token and stores the user id on the gin and
// request contexts
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Ctx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Debug("authentication failed: missing authorization header")
			unauthorized(c)
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			log.Debug("authentication failed: invalid authorization format")
			unauthorized(c)
			return
		}

		user, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			log.Warn("authentication failed: token verification error", logger.Err(err))
			unauthorized(c)
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user_email", user.Email)

		ctx := logger.WithUserID(c.Request.Context(), user.ID)
		c.Request = c.Request.WithContext(ctx)

		log.Debug("authentication successful", logger.String("user_id", user.ID))

		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
	c.Abort()
}
