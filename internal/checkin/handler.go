package checkin

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventflow/backend/internal/apierr"
	"github.com/eventflow/backend/internal/metrics"
	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/pkg/response"
)

// EventLookup resolves the event a pass belongs to.
type EventLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// Announcer is told about fresh check-ins.
type Announcer interface {
	CheckedIn(ctx context.Context, p *models.Participant)
}

// PassView is what door staff see for a scanned pass.
type PassView struct {
	Participant      *models.Participant `json:"participant"`
	EventName        string              `json:"event_name,omitempty"`
	AlreadyCheckedIn bool                `json:"already_checked_in"`
	Message          string              `json:"message,omitempty"`
}

// Handler handles check-in HTTP endpoints.
type Handler struct {
	engine    *Engine
	events    EventLookup
	announcer Announcer
	logger    *zap.Logger
}

// NewHandler creates a check-in handler. announcer may be nil.
func NewHandler(engine *Engine, events EventLookup, announcer Announcer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{engine: engine, events: events, announcer: announcer, logger: logger}
}

// Lookup handles GET /checkin/:token (staff or admin).
func (h *Handler) Lookup(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.engine.FindByToken(ctx, c.Param("token"))
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	response.OK(c, PassView{
		Participant:      p,
		EventName:        h.eventName(ctx, p.EventID),
		AlreadyCheckedIn: p.CheckedIn(),
	})
}

// CheckIn handles POST /checkin/:token (staff or admin).
func (h *Handler) CheckIn(c *gin.Context) {
	ctx := c.Request.Context()
	p, already, err := h.engine.CheckIn(ctx, c.Param("token"))
	if err != nil {
		metrics.CheckIns.WithLabelValues(metrics.OutcomeOf(err)).Inc()
		if errors.Is(err, models.ErrInvalidToken) {
			h.logger.Info("check-in denied", zap.String("client_ip", c.ClientIP()))
		}
		apierr.Write(c, h.logger, err)
		return
	}

	view := PassView{
		Participant:      p,
		EventName:        h.eventName(ctx, p.EventID),
		AlreadyCheckedIn: already,
	}
	if already {
		metrics.CheckIns.WithLabelValues(metrics.OutcomeAlready).Inc()
		view.Message = "participant already checked in"
		response.OK(c, view)
		return
	}

	metrics.CheckIns.WithLabelValues(metrics.OutcomeOK).Inc()
	h.logger.Info("participant checked in",
		zap.String("participant_id", p.ID.String()),
		zap.String("event_id", p.EventID.String()),
	)
	if h.announcer != nil {
		h.announcer.CheckedIn(ctx, p)
	}
	view.Message = "participant checked in successfully"
	response.OK(c, view)
}

// eventName is best effort; passes of deleted events still resolve.
func (h *Handler) eventName(ctx context.Context, id uuid.UUID) string {
	if h.events == nil {
		return ""
	}
	ev, err := h.events.Get(ctx, id)
	if err != nil {
		return ""
	}
	return ev.Name
}
