// Package registrations turns form submissions into participants.
package registrations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/internal/store"
)

// teamNameKey is read when a team event's form has no field with the team name role.
const teamNameKey = "teamName"

// Engine validates submissions and creates participants.
type Engine struct {
	participants *store.Collection[models.Participant]
	now          func() time.Time
	newToken     func() string
}

// NewEngine creates a registration engine over s.
func NewEngine(s store.Store) *Engine {
	return &Engine{
		participants: store.NewCollection[models.Participant](s, store.Participants),
		now:          time.Now,
		newToken:     uuid.NewString,
	}
}

// Register validates sub against ev's form and stores a new Pending participant.
// The duplicate checks and the insert happen in one store update.
func (e *Engine) Register(ctx context.Context, ev *models.Event, sub models.Submission) (*models.Participant, error) {
	if missing := MissingFields(ev, sub); len(missing) > 0 {
		return nil, &models.ValidationError{Fields: missing}
	}

	p := models.Participant{
		EventID:       ev.ID,
		Name:          models.UnknownParticipantName,
		FormData:      copySubmission(sub),
		CheckInStatus: models.StatusPending,
	}
	if f, ok := ev.FieldByRole(models.FieldRoleName); ok {
		if name := sub.Text(f.ID); name != "" {
			p.Name = name
		}
	}
	if f, ok := ev.FieldByRole(models.FieldRoleEmail); ok {
		p.Email = sub.Text(f.ID)
	}
	if ev.IsTeam() {
		p.TeamName = teamName(ev, sub)
	}

	err := e.participants.Mutate(ctx, func(all []models.Participant) ([]models.Participant, error) {
		tokens := make(map[string]struct{}, len(all))
		for i := range all {
			tokens[all[i].EntryUUID] = struct{}{}
			if all[i].EventID != ev.ID {
				continue
			}
			if p.Email != "" && strings.EqualFold(all[i].Email, p.Email) {
				return nil, &models.DuplicateError{Kind: models.DuplicateEmail}
			}
			if p.TeamName != "" && strings.EqualFold(all[i].TeamName, p.TeamName) {
				return nil, &models.DuplicateError{Kind: models.DuplicateTeam}
			}
		}
		p.ID = uuid.New()
		p.EntryUUID = e.newToken()
		for {
			if _, taken := tokens[p.EntryUUID]; !taken {
				break
			}
			p.EntryUUID = e.newToken()
		}
		p.RegisteredAt = e.now().UTC()
		return append(all, p), nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByEvent returns the participants of eventID in registration order.
func (e *Engine) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Participant, error) {
	all, err := e.participants.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	out := make([]models.Participant, 0)
	for _, p := range all {
		if p.EventID == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

// MissingFields returns the labels of required fields sub leaves empty, in form order.
func MissingFields(ev *models.Event, sub models.Submission) []string {
	var missing []string
	for _, f := range ev.FormFields {
		if f.Required && !sub.Filled(f.ID) {
			missing = append(missing, f.Label)
		}
	}
	return missing
}

func teamName(ev *models.Event, sub models.Submission) string {
	if f, ok := ev.FieldByRole(models.FieldRoleTeamName); ok {
		return sub.Text(f.ID)
	}
	return sub.Text(teamNameKey)
}

func copySubmission(sub models.Submission) models.Submission {
	out := make(models.Submission, len(sub))
	for k, v := range sub {
		out[k] = v
	}
	return out
}
