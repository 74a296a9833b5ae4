// Package events manages the event catalog and each event's registration form.
package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/internal/store"
)

// Draft is an event as submitted for creation.
type Draft struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Date        string             `json:"date"`
	Location    string             `json:"location"`
	EventType   models.EventType   `json:"event_type"`
	MaxTeamSize *int               `json:"max_team_size"`
	FormFields  []models.FormField `json:"form_fields"`
}

// Patch holds the fields to change on an existing event. Nil fields are left alone.
type Patch struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Date        *string             `json:"date"`
	Location    *string             `json:"location"`
	EventType   *models.EventType   `json:"event_type"`
	MaxTeamSize *int                `json:"max_team_size"`
	FormFields  *[]models.FormField `json:"form_fields"`
}

// Catalog is the event store.
type Catalog struct {
	events *store.Collection[models.Event]
	now    func() time.Time
}

// NewCatalog creates a catalog over s.
func NewCatalog(s store.Store) *Catalog {
	return &Catalog{
		events: store.NewCollection[models.Event](s, store.Events),
		now:    time.Now,
	}
}

// List returns every event in creation order.
func (c *Catalog) List(ctx context.Context) ([]models.Event, error) {
	return c.events.All(ctx)
}

// Get returns the event with id.
func (c *Catalog) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	all, err := c.events.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, notFound(id)
}

// Create validates d, assigns an id and appends the event.
func (c *Catalog) Create(ctx context.Context, d Draft) (*models.Event, error) {
	ev := models.Event{
		Name:        strings.TrimSpace(d.Name),
		Description: d.Description,
		Date:        strings.TrimSpace(d.Date),
		Location:    strings.TrimSpace(d.Location),
		EventType:   d.EventType,
		MaxTeamSize: d.MaxTeamSize,
		FormFields:  d.FormFields,
	}
	if ev.EventType == "" {
		ev.EventType = models.EventIndividual
	}
	if err := normalize(&ev); err != nil {
		return nil, err
	}
	ev.ID = uuid.New()
	ev.CreatedAt = c.now().UTC()

	err := c.events.Mutate(ctx, func(all []models.Event) ([]models.Event, error) {
		return append(all, ev), nil
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &ev, nil
}

// Update applies p to the event with id and returns the result.
func (c *Catalog) Update(ctx context.Context, id uuid.UUID, p Patch) (*models.Event, error) {
	var updated models.Event
	err := c.events.Mutate(ctx, func(all []models.Event) ([]models.Event, error) {
		for i := range all {
			if all[i].ID != id {
				continue
			}
			ev := all[i]
			p.apply(&ev)
			if err := normalize(&ev); err != nil {
				return nil, err
			}
			all[i] = ev
			updated = ev
			return all, nil
		}
		return nil, notFound(id)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the event with id. Its participants are kept.
func (c *Catalog) Delete(ctx context.Context, id uuid.UUID) error {
	return c.events.Mutate(ctx, func(all []models.Event) ([]models.Event, error) {
		for i := range all {
			if all[i].ID == id {
				return append(all[:i], all[i+1:]...), nil
			}
		}
		return nil, notFound(id)
	})
}

func (p Patch) apply(ev *models.Event) {
	if p.Name != nil {
		ev.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		ev.Description = *p.Description
	}
	if p.Date != nil {
		ev.Date = strings.TrimSpace(*p.Date)
	}
	if p.Location != nil {
		ev.Location = strings.TrimSpace(*p.Location)
	}
	if p.EventType != nil {
		ev.EventType = *p.EventType
		if *p.EventType == models.EventIndividual && p.MaxTeamSize == nil {
			ev.MaxTeamSize = nil
		}
	}
	if p.MaxTeamSize != nil {
		ev.MaxTeamSize = p.MaxTeamSize
	}
	if p.FormFields != nil {
		ev.FormFields = *p.FormFields
	}
}

// normalize checks ev and fills in missing form field ids.
func normalize(ev *models.Event) error {
	var missing []string
	if ev.Name == "" {
		missing = append(missing, "name")
	}
	if ev.Date == "" {
		missing = append(missing, "date")
	}
	if ev.Location == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return &models.ValidationError{Fields: missing}
	}

	switch ev.EventType {
	case models.EventIndividual:
		if ev.MaxTeamSize != nil {
			return invalid("max_team_size", "max_team_size applies to team events only")
		}
	case models.EventTeam:
		if ev.MaxTeamSize != nil && *ev.MaxTeamSize < 2 {
			return invalid("max_team_size", "max_team_size must be at least 2")
		}
	default:
		return invalid("event_type", fmt.Sprintf("unknown event type %q", ev.EventType))
	}

	if ev.FormFields == nil {
		ev.FormFields = []models.FormField{}
	}
	seen := make(map[string]bool, len(ev.FormFields))
	for i := range ev.FormFields {
		f := &ev.FormFields[i]
		f.Label = strings.TrimSpace(f.Label)
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if f.Label == "" {
			return invalid("form_fields", fmt.Sprintf("form field %d has no label", i+1))
		}
		if seen[f.ID] {
			return invalid(f.Label, fmt.Sprintf("duplicate form field id %q", f.ID))
		}
		seen[f.ID] = true
		if !f.Type.Valid() {
			return invalid(f.Label, fmt.Sprintf("unknown field type %q", f.Type))
		}
		if !f.Role.Valid() {
			return invalid(f.Label, fmt.Sprintf("unknown field role %q", f.Role))
		}
		if f.Role == "" {
			f.Role = models.FieldRoleNone
		}
		if f.Type == models.FieldSelect {
			if len(f.Options) == 0 {
				return invalid(f.Label, fmt.Sprintf("select field %q needs options", f.Label))
			}
		} else if len(f.Options) > 0 {
			return invalid(f.Label, fmt.Sprintf("options are only allowed on select fields (%q)", f.Label))
		}
	}
	return nil
}

func invalid(field, msg string) error {
	return &models.ValidationError{Fields: []string{field}, Message: msg}
}

func notFound(id uuid.UUID) error {
	return &models.NotFoundError{Resource: "event", ID: id.String()}
}
