package middleware

import (
	"context"
	"net/http"

	"verisure/app"
	"verisure/domain/session"
	"verisure/internal/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionSource returns the stored session
type SessionSource interface {
	Current(ctx context.Context) (*session.Session, error)
}

// StatusSource returns the last approval check
type StatusSource interface {
	State() app.ApprovalState
}

// RequireApproved locks issuer mutations while the logged in issuer is
// still awaiting approval. Other sessions pass through so the handlers can
// reject them with their own messages.
func RequireApproved(sessions SessionSource, status StatusSource, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sessions.Current(c.Request.Context())
		if err != nil {
			logger.Error("failed to load session", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load session",
				"code":  errors.GetCode(err),
			})
			return
		}

		if sess.NeedsApproval() {
			line := status.State().Status
			if line == "" {
				line = app.StatusStillPending
			}
			c.AbortWithStatusJSON(http.StatusLocked, gin.H{
				"error":  "Your issuer account is awaiting approval.",
				"code":   errors.CodeLocked,
				"locked": true,
				"status": line,
			})
			return
		}

		c.Next()
	}
}
