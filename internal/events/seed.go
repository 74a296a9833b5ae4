package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/internal/store"
)

// Seed inserts the example events when the catalog is empty and reports how many were added.
func (c *Catalog) Seed(ctx context.Context) (int, error) {
	added := 0
	err := c.events.Mutate(ctx, func(all []models.Event) ([]models.Event, error) {
		if len(all) > 0 {
			return nil, store.ErrUnchanged
		}
		now := c.now().UTC()
		seed := exampleEvents()
		for i := range seed {
			seed[i].ID = uuid.New()
			seed[i].CreatedAt = now
			for j := range seed[i].FormFields {
				seed[i].FormFields[j].ID = uuid.NewString()
			}
		}
		added = len(seed)
		return seed, nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed events: %w", err)
	}
	return added, nil
}

func exampleEvents() []models.Event {
	teamSize := 4
	return []models.Event{
		{
			Name:        "Tech Conference 2025",
			Description: "Annual technology conference featuring industry leaders",
			Date:        "2025-03-15",
			Location:    "Convention Center, Main Hall",
			EventType:   models.EventIndividual,
			FormFields: []models.FormField{
				{Label: "Full Name", Type: models.FieldText, Required: true, Role: models.FieldRoleName},
				{Label: "Email", Type: models.FieldEmail, Required: true, Role: models.FieldRoleEmail},
				{Label: "Company", Type: models.FieldText, Role: models.FieldRoleNone},
				{Label: "Dietary Restrictions", Type: models.FieldTextarea, Role: models.FieldRoleNone},
			},
		},
		{
			Name:        "Hackathon 2025",
			Description: "48-hour coding competition",
			Date:        "2025-04-20",
			Location:    "Innovation Hub",
			EventType:   models.EventTeam,
			MaxTeamSize: &teamSize,
			FormFields: []models.FormField{
				{Label: "Team Name", Type: models.FieldText, Required: true, Role: models.FieldRoleTeamName},
				{Label: "Team Leader Name", Type: models.FieldText, Required: true, Role: models.FieldRoleName},
				{Label: "Team Leader Email", Type: models.FieldEmail, Required: true, Role: models.FieldRoleEmail},
				{Label: "Team Size", Type: models.FieldNumber, Required: true, Role: models.FieldRoleNone},
				{
					Label: "Project Category", Type: models.FieldSelect, Required: true, Role: models.FieldRoleNone,
					Options: []string{"AI/ML", "Web Dev", "Mobile", "IoT", "Other"},
				},
			},
		},
	}
}
