// Package checkin resolves entry passes and admits participants at the door.
package checkin

import (
	"context"
	"time"

	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/internal/store"
)

// Engine looks up entry tokens and records check-ins.
type Engine struct {
	participants *store.Collection[models.Participant]
	now          func() time.Time
}

// NewEngine creates a check-in engine over s.
func NewEngine(s store.Store) *Engine {
	return &Engine{
		participants: store.NewCollection[models.Participant](s, store.Participants),
		now:          time.Now,
	}
}

// FindByToken returns the participant holding token. Empty, malformed and unknown tokens all yield ErrInvalidToken.
func (e *Engine) FindByToken(ctx context.Context, token string) (*models.Participant, error) {
	if token == "" {
		return nil, models.ErrInvalidToken
	}
	all, err := e.participants.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].EntryUUID == token {
			return &all[i], nil
		}
	}
	return nil, models.ErrInvalidToken
}

// CheckIn admits the holder of token. A participant already admitted is returned as is with alreadyCheckedIn set.
func (e *Engine) CheckIn(ctx context.Context, token string) (p *models.Participant, alreadyCheckedIn bool, err error) {
	if token == "" {
		return nil, false, models.ErrInvalidToken
	}
	var out models.Participant
	err = e.participants.Mutate(ctx, func(all []models.Participant) ([]models.Participant, error) {
		alreadyCheckedIn = false
		for i := range all {
			if all[i].EntryUUID != token {
				continue
			}
			if all[i].CheckedIn() {
				out = all[i]
				alreadyCheckedIn = true
				return nil, store.ErrUnchanged
			}
			at := e.now().UTC()
			all[i].CheckInStatus = models.StatusCheckedIn
			all[i].CheckedInAt = &at
			out = all[i]
			return all, nil
		}
		return nil, models.ErrInvalidToken
	})
	if err != nil {
		return nil, false, err
	}
	return &out, alreadyCheckedIn, nil
}
