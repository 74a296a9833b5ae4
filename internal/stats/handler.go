package stats

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventflow/backend/internal/apierr"
	"github.com/eventflow/backend/internal/events"
	"github.com/eventflow/backend/pkg/response"
)

// Handler handles GET /events/:id/stats and GET /stats.
type Handler struct {
	agg     *Aggregator
	catalog *events.Catalog
	logger  *zap.Logger
}

// NewHandler creates a stats handler.
func NewHandler(agg *Aggregator, catalog *events.Catalog, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{agg: agg, catalog: catalog, logger: logger}
}

// ByEvent handles GET /events/:id/stats (admin or staff).
func (h *Handler) ByEvent(c *gin.Context) {
	id, ok := events.ParseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.catalog.Get(ctx, id); err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	s, err := h.agg.For(ctx, id)
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	response.OK(c, s)
}

// All handles GET /stats (admin or staff).
func (h *Handler) All(c *gin.Context) {
	list, err := h.agg.All(c.Request.Context())
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	response.OK(c, list)
}
