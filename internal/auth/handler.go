package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventflow/backend/internal/apierr"
	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/pkg/response"
)

// CredentialsRequest is the body for POST /auth/signup and POST /auth/signin.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RoleRequest is the body for PATCH /auth/users/:id/role.
type RoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// SignUp handles POST /auth/signup.
func (h *Handler) SignUp(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	sess, err := h.svc.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	h.logger.Info("account created", zap.String("user_id", sess.User.ID.String()), zap.String("role", string(sess.User.Role)))
	response.Created(c, sess)
}

// SignIn handles POST /auth/signin.
func (h *Handler) SignIn(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	sess, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	response.OK(c, sess)
}

// SignOut handles POST /auth/signout.
func (h *Handler) SignOut(c *gin.Context) {
	token, ok := BearerToken(c.GetHeader("Authorization"))
	if !ok {
		response.Unauthorized(c, "missing authorization header")
		return
	}
	if err := h.svc.SignOut(c.Request.Context(), token); err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	response.NoContent(c)
}

// Session handles GET /auth/session.
func (h *Handler) Session(c *gin.Context) {
	token, ok := BearerToken(c.GetHeader("Authorization"))
	if !ok {
		response.Unauthorized(c, "missing authorization header")
		return
	}
	sess, err := h.svc.GetSession(c.Request.Context(), token)
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	response.OK(c, sess)
}

// ListUsers handles GET /auth/users (admin only).
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	response.OK(c, users)
}

// SetRole handles PATCH /auth/users/:id/role (admin only).
func (h *Handler) SetRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	u, err := h.svc.SetRole(c.Request.Context(), id, req.Role)
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	h.logger.Info("role changed", zap.String("user_id", u.ID.String()), zap.String("role", string(u.Role)))
	response.OK(c, u)
}
