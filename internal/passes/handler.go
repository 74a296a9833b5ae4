package passes

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventflow/backend/internal/apierr"
	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/pkg/response"
)

const maxSize = 1024

// TokenResolver confirms an entry token belongs to a participant.
type TokenResolver interface {
	FindByToken(ctx context.Context, token string) (*models.Participant, error)
}

// Handler serves entry pass images.
type Handler struct {
	tokens TokenResolver
	logger *zap.Logger
}

// NewHandler creates a pass handler.
func NewHandler(tokens TokenResolver, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{tokens: tokens, logger: logger}
}

// Image handles GET /passes/:token (a trailing .png is accepted). Optional ?size= in pixels.
func (h *Handler) Image(c *gin.Context) {
	token := strings.TrimSuffix(c.Param("token"), ".png")
	p, err := h.tokens.FindByToken(c.Request.Context(), token)
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}

	size := DefaultSize
	if s := c.Query("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 64 || n > maxSize {
			response.BadRequest(c, "size must be between 64 and 1024")
			return
		}
		size = n
	}

	png, err := Render(p.EntryUUID, size)
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", png)
}
