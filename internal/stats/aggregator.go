// Package stats summarizes registrations and check-ins per event.
package stats

import (
	"context"

	"github.com/google/uuid"

	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/internal/store"
)

// Summary is the attendance count for one event. Pending is always Total minus CheckedIn.
type Summary struct {
	Total     int `json:"total"`
	CheckedIn int `json:"checked_in"`
	Pending   int `json:"pending"`
}

// EventSummary is a Summary labelled with its event.
type EventSummary struct {
	EventID   uuid.UUID `json:"event_id"`
	EventName string    `json:"event_name"`
	Summary
}

// Aggregator reads participants and events without modifying them.
type Aggregator struct {
	events       *store.Collection[models.Event]
	participants *store.Collection[models.Participant]
}

// NewAggregator creates an aggregator over s.
func NewAggregator(s store.Store) *Aggregator {
	return &Aggregator{
		events:       store.NewCollection[models.Event](s, store.Events),
		participants: store.NewCollection[models.Participant](s, store.Participants),
	}
}

// For returns the summary of eventID. Unknown events summarize to zeros.
func (a *Aggregator) For(ctx context.Context, eventID uuid.UUID) (Summary, error) {
	all, err := a.participants.All(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Compute(all, eventID), nil
}

// All returns a summary for every event in catalog order.
func (a *Aggregator) All(ctx context.Context) ([]EventSummary, error) {
	events, err := a.events.All(ctx)
	if err != nil {
		return nil, err
	}
	participants, err := a.participants.All(ctx)
	if err != nil {
		return nil, err
	}
	byEvent := make(map[uuid.UUID]*Summary, len(events))
	for _, p := range participants {
		s, ok := byEvent[p.EventID]
		if !ok {
			s = &Summary{}
			byEvent[p.EventID] = s
		}
		add(s, &p)
	}
	out := make([]EventSummary, 0, len(events))
	for _, ev := range events {
		es := EventSummary{EventID: ev.ID, EventName: ev.Name}
		if s, ok := byEvent[ev.ID]; ok {
			es.Summary = *s
		}
		out = append(out, es)
	}
	return out, nil
}

// Compute counts the participants of eventID in one pass.
func Compute(participants []models.Participant, eventID uuid.UUID) Summary {
	var s Summary
	for i := range participants {
		if participants[i].EventID == eventID {
			add(&s, &participants[i])
		}
	}
	return s
}

func add(s *Summary, p *models.Participant) {
	s.Total++
	if p.CheckedIn() {
		s.CheckedIn++
	} else {
		s.Pending++
	}
}
