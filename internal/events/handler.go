package events

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventflow/backend/internal/apierr"
	"github.com/eventflow/backend/pkg/response"
)

// Handler handles event HTTP endpoints.
type Handler struct {
	catalog *Catalog
	logger  *zap.Logger
}

// NewHandler creates an event handler.
func NewHandler(catalog *Catalog, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{catalog: catalog, logger: logger}
}

// ParseID reads the :id path parameter. It writes a 400 and returns false when it is not a UUID.
func ParseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return uuid.Nil, false
	}
	return id, true
}

// List handles GET /events.
func (h *Handler) List(c *gin.Context) {
	list, err := h.catalog.List(c.Request.Context())
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /events/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}
	ev, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	response.OK(c, ev)
}

// Create handles POST /events (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req Draft
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ev, err := h.catalog.Create(c.Request.Context(), req)
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	h.logger.Info("event created", zap.String("event_id", ev.ID.String()), zap.String("name", ev.Name))
	response.Created(c, ev)
}

// Update handles PATCH /events/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}
	var req Patch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ev, err := h.catalog.Update(c.Request.Context(), id, req)
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	response.OK(c, ev)
}

// Delete handles DELETE /events/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	h.logger.Info("event deleted", zap.String("event_id", id.String()))
	response.NoContent(c)
}
