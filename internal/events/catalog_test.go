package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/internal/store"
)

func intPtr(n int) *int { return &n }

func validDraft() Draft {
	return Draft{
		Name:     "Meetup",
		Date:     "2025-06-01",
		Location: "Room 1",
		FormFields: []models.FormField{
			{Label: "Name", Type: models.FieldText, Required: true, Role: models.FieldRoleName},
		},
	}
}

func TestListEmptyStoreIsEmpty(t *testing.T) {
	c := NewCatalog(store.NewMemory())
	list, err := c.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestCreateAssignsIDsAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(store.NewMemory())

	first, err := c.Create(ctx, validDraft())
	require.NoError(t, err)
	second := validDraft()
	second.Name = "Second"
	got, err := c.Create(ctx, second)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.NotEqual(t, first.ID, got.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, models.EventIndividual, first.EventType)
	assert.NotEmpty(t, first.FormFields[0].ID)

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Meetup", list[0].Name)
	assert.Equal(t, "Second", list[1].Name)

	fetched, err := c.Get(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, got.ID, fetched.ID)
}

func TestCreateRequiresNameDateLocation(t *testing.T) {
	c := NewCatalog(store.NewMemory())
	_, err := c.Create(context.Background(), Draft{Description: "x"})
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"name", "date", "location"}, verr.Fields)
}

func TestCreateRejectsBadSchemas(t *testing.T) {
	cases := map[string]func(d *Draft){
		"duplicate field id": func(d *Draft) {
			d.FormFields = []models.FormField{
				{ID: "a", Label: "A", Type: models.FieldText},
				{ID: "a", Label: "B", Type: models.FieldText},
			}
		},
		"unknown type":  func(d *Draft) { d.FormFields[0].Type = "date" },
		"unknown role":  func(d *Draft) { d.FormFields[0].Role = "phone" },
		"stray options": func(d *Draft) { d.FormFields[0].Options = []string{"x"} },
		"select without options": func(d *Draft) {
			d.FormFields[0].Type = models.FieldSelect
		},
		"team too small": func(d *Draft) {
			d.EventType = models.EventTeam
			d.MaxTeamSize = intPtr(1)
		},
		"individual with team size": func(d *Draft) { d.MaxTeamSize = intPtr(4) },
		"unknown event type":        func(d *Draft) { d.EventType = "relay" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := validDraft()
			mutate(&d)
			_, err := NewCatalog(store.NewMemory()).Create(context.Background(), d)
			var verr *models.ValidationError
			assert.True(t, errors.As(err, &verr), "got %v", err)
		})
	}
}

func TestCreateAllowsDuplicateNamesAndFreeFormDates(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(store.NewMemory())
	d := validDraft()
	d.Date = "sometime in June"
	_, err := c.Create(ctx, d)
	require.NoError(t, err)
	_, err = c.Create(ctx, d)
	require.NoError(t, err)
}

func TestGetUnknownIsNotFound(t *testing.T) {
	_, err := NewCatalog(store.NewMemory()).Get(context.Background(), uuid.New())
	assert.True(t, models.IsNotFound(err))
}

func TestUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(store.NewMemory())
	ev, err := c.Create(ctx, validDraft())
	require.NoError(t, err)

	loc := "Room 2"
	team := models.EventTeam
	updated, err := c.Update(ctx, ev.ID, Patch{Location: &loc, EventType: &team, MaxTeamSize: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, "Meetup", updated.Name)
	assert.Equal(t, "Room 2", updated.Location)
	assert.True(t, updated.IsTeam())
	assert.Equal(t, 3, *updated.MaxTeamSize)
	assert.Equal(t, ev.CreatedAt, updated.CreatedAt)

	back := models.EventIndividual
	updated, err = c.Update(ctx, ev.ID, Patch{EventType: &back})
	require.NoError(t, err)
	assert.Nil(t, updated.MaxTeamSize)
}

func TestUpdateInvalidLeavesEventUntouched(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(store.NewMemory())
	ev, err := c.Create(ctx, validDraft())
	require.NoError(t, err)

	empty := ""
	_, err = c.Update(ctx, ev.ID, Patch{Name: &empty})
	require.Error(t, err)

	got, err := c.Get(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meetup", got.Name)
}

func TestUpdateAndDeleteUnknown(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(store.NewMemory())
	name := "x"
	_, err := c.Update(ctx, uuid.New(), Patch{Name: &name})
	assert.True(t, models.IsNotFound(err))
	assert.True(t, models.IsNotFound(c.Delete(ctx, uuid.New())))
}

func TestDeleteKeepsOthersAndParticipants(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	c := NewCatalog(s)
	a, err := c.Create(ctx, validDraft())
	require.NoError(t, err)
	b, err := c.Create(ctx, validDraft())
	require.NoError(t, err)

	participants := store.NewCollection[models.Participant](s, store.Participants)
	require.NoError(t, participants.Replace(ctx, []models.Participant{{ID: uuid.New(), EventID: a.ID}}))

	require.NoError(t, c.Delete(ctx, a.ID))
	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	orphans, err := participants.All(ctx)
	require.NoError(t, err)
	assert.Len(t, orphans, 1)
}

func TestSeedOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(store.NewMemory())

	n, err := c.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = c.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Tech Conference 2025", list[0].Name)
	assert.Equal(t, "Hackathon 2025", list[1].Name)

	hack := list[1]
	assert.True(t, hack.IsTeam())
	assert.Equal(t, 4, *hack.MaxTeamSize)
	f, ok := hack.FieldByRole(models.FieldRoleTeamName)
	require.True(t, ok)
	assert.Equal(t, "Team Name", f.Label)
	f, ok = hack.FieldByRole(models.FieldRoleEmail)
	require.True(t, ok)
	assert.Equal(t, "Team Leader Email", f.Label)
}

func TestSeedSkipsNonEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(store.NewMemory())
	_, err := c.Create(ctx, validDraft())
	require.NoError(t, err)

	n, err := c.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
