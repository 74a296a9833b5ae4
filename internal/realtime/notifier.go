package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/internal/stats"
)

// Publisher delivers a feed message to every watcher of an event.
type Publisher interface {
	Publish(eventID uuid.UUID, event string, payload interface{})
}

// StatsSource reads the current summary of an event.
type StatsSource interface {
	For(ctx context.Context, eventID uuid.UUID) (stats.Summary, error)
}

// Activity is the payload of registration and checkin feed messages.
// It never carries the entry token.
type Activity struct {
	ParticipantID uuid.UUID            `json:"participant_id"`
	Name          string               `json:"name"`
	TeamName      string               `json:"team_name,omitempty"`
	Status        models.CheckInStatus `json:"check_in_status"`
	At            time.Time            `json:"at"`
	Stats         *stats.Summary       `json:"stats,omitempty"`
}

// Snapshot is the payload of snapshot feed messages.
type Snapshot struct {
	EventID uuid.UUID     `json:"event_id"`
	Stats   stats.Summary `json:"stats"`
}

// Notifier turns registrations and check-ins into feed messages.
type Notifier struct {
	pub    Publisher
	stats  StatsSource
	logger *zap.Logger
}

// NewNotifier creates a notifier publishing through pub.
func NewNotifier(pub Publisher, src StatsSource, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{pub: pub, stats: src, logger: logger}
}

// Registered announces a new participant.
func (n *Notifier) Registered(ctx context.Context, p *models.Participant) {
	n.announce(ctx, EventRegistration, p, p.RegisteredAt)
}

// CheckedIn announces an admission.
func (n *Notifier) CheckedIn(ctx context.Context, p *models.Participant) {
	at := time.Now().UTC()
	if p.CheckedInAt != nil {
		at = *p.CheckedInAt
	}
	n.announce(ctx, EventCheckIn, p, at)
}

// Snapshot returns the current feed state for eventID. It satisfies SnapshotFunc.
func (n *Notifier) Snapshot(ctx context.Context, eventID uuid.UUID) (interface{}, error) {
	s, err := n.stats.For(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return Snapshot{EventID: eventID, Stats: s}, nil
}

func (n *Notifier) announce(ctx context.Context, event string, p *models.Participant, at time.Time) {
	a := Activity{
		ParticipantID: p.ID,
		Name:          p.Name,
		TeamName:      p.TeamName,
		Status:        p.CheckInStatus,
		At:            at,
	}
	if s, err := n.stats.For(ctx, p.EventID); err != nil {
		n.logger.Warn("feed stats unavailable", zap.String("event_id", p.EventID.String()), zap.Error(err))
	} else {
		a.Stats = &s
	}
	n.pub.Publish(p.EventID, event, a)
}
