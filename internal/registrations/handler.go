package registrations

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventflow/backend/internal/apierr"
	"github.com/eventflow/backend/internal/events"
	"github.com/eventflow/backend/internal/metrics"
	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/pkg/queue"
	"github.com/eventflow/backend/pkg/response"
)

// RegisterRequest is the body for POST /events/:id/register. Keys of form_data are form field ids.
type RegisterRequest struct {
	FormData map[string]interface{} `json:"form_data" binding:"required"`
}

// RegisterResponse carries the new participant and where to fetch the entry pass.
type RegisterResponse struct {
	Participant *models.Participant `json:"participant"`
	PassURL     string              `json:"pass_url"`
}

// EventLookup resolves the event being registered for.
type EventLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// PassQueue accepts background entry pass deliveries.
type PassQueue interface {
	EnqueuePassDelivery(ctx context.Context, payload queue.PassDeliveryPayload) error
}

// Announcer is told about new registrations.
type Announcer interface {
	Registered(ctx context.Context, p *models.Participant)
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	engine    *Engine
	events    EventLookup
	passes    PassQueue
	announcer Announcer
	logger    *zap.Logger
}

// NewHandler creates a registrations handler. passes and announcer may be nil.
func NewHandler(engine *Engine, events EventLookup, passes PassQueue, announcer Announcer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{engine: engine, events: events, passes: passes, announcer: announcer, logger: logger}
}

// Register handles POST /events/:id/register (public).
func (h *Handler) Register(c *gin.Context) {
	eventID, ok := events.ParseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	ev, err := h.events.Get(ctx, eventID)
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	p, err := h.engine.Register(ctx, ev, models.Submission(req.FormData))
	metrics.Registrations.WithLabelValues(metrics.OutcomeOf(err)).Inc()
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	h.logger.Info("participant registered",
		zap.String("participant_id", p.ID.String()),
		zap.String("event_id", ev.ID.String()),
	)

	if h.passes != nil {
		payload := queue.PassDeliveryPayload{
			ParticipantID: p.ID,
			EventID:       p.EventID,
			EntryUUID:     p.EntryUUID,
		}
		if err := h.passes.EnqueuePassDelivery(ctx, payload); err != nil {
			// the pass stays available from /passes/:token
			h.logger.Warn("enqueue pass delivery failed", zap.String("participant_id", p.ID.String()), zap.Error(err))
		}
	}
	if h.announcer != nil {
		h.announcer.Registered(ctx, p)
	}

	response.Created(c, RegisterResponse{
		Participant: p,
		PassURL:     "/passes/" + p.EntryUUID + ".png",
	})
}

// ListByEvent handles GET /events/:id/participants (admin or staff).
func (h *Handler) ListByEvent(c *gin.Context) {
	eventID, ok := events.ParseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.events.Get(ctx, eventID); err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	list, err := h.engine.ListByEvent(ctx, eventID)
	if err != nil {
		apierr.Write(c, h.logger, err)
		return
	}
	response.OK(c, list)
}
