package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/eventflow/backend/internal/apierr"
	"github.com/eventflow/backend/internal/auth"
	"github.com/eventflow/backend/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserRole is the key for user role in gin context.
	ContextUserRole = "user_role"
	// ContextUserEmail is the key for user email in gin context.
	ContextUserEmail = "user_email"
)

// SessionResolver turns a bearer token into a live session.
type SessionResolver interface {
	GetSession(ctx context.Context, token string) (*auth.Session, error)
}

// JWT returns a middleware that resolves the bearer session and sets the user in context.
// Revoked tokens and deleted accounts are rejected even while the signature is still valid.
func JWT(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		token, ok := auth.BearerToken(header)
		if !ok {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		sess, err := sessions.GetSession(c.Request.Context(), token)
		if err != nil {
			apierr.Write(c, nil, err)
			c.Abort()
			return
		}
		c.Set(ContextUserID, sess.User.ID)
		c.Set(ContextUserRole, sess.User.Role)
		c.Set(ContextUserEmail, sess.User.Email)
		c.Next()
	}
}
