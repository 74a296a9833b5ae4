package export

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventflow/backend/internal/apierr"
	"github.com/eventflow/backend/internal/events"
	"github.com/eventflow/backend/internal/models"
)

// EventLookup resolves the exported event.
type EventLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// ParticipantLister lists an event's participants.
type ParticipantLister interface {
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Participant, error)
}

// Handler serves attendee exports.
type Handler struct {
	events       EventLookup
	participants ParticipantLister
	logger       *zap.Logger
}

// NewHandler creates an export handler.
func NewHandler(events EventLookup, participants ParticipantLister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{events: events, participants: participants, logger: logger}
}

// Participants handles GET /events/:id/export.xlsx (admin or staff).
func (h *Handler) Participants(c *gin.Context) {
	id, ok := events.ParseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	ev, err := h.events.Get(ctx, id)
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	list, err := h.participants.ListByEvent(ctx, id)
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	body, err := ParticipantsXLSX(ev, list)
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, fileName(ev.Name)))
	c.Data(http.StatusOK, ContentType, body)
}

func fileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		}
		return -1
	}, strings.TrimSpace(name))
	if name == "" {
		return "participants"
	}
	return name + "-participants"
}
