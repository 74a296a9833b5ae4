package registrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflow/backend/internal/events"
	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/internal/store"
	"github.com/eventflow/backend/pkg/queue"
)

type fakeQueue struct {
	jobs []queue.PassDeliveryPayload
	err  error
}

func (f *fakeQueue) EnqueuePassDelivery(_ context.Context, p queue.PassDeliveryPayload) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, p)
	return nil
}

type fakeAnnouncer struct{ n int }

func (f *fakeAnnouncer) Registered(context.Context, *models.Participant) { f.n++ }

func setup(t *testing.T, q PassQueue, ann Announcer) (*gin.Engine, *models.Event) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := store.NewMemory()
	catalog := events.NewCatalog(s)
	_, err := catalog.Seed(context.Background())
	require.NoError(t, err)
	list, err := catalog.List(context.Background())
	require.NoError(t, err)

	h := NewHandler(NewEngine(s), catalog, q, ann, nil)
	r := gin.New()
	r.POST("/events/:id/register", h.Register)
	r.GET("/events/:id/participants", h.ListByEvent)
	return r, &list[1] // Hackathon 2025
}

func hackathonForm(ev *models.Event, team, email string) map[string]interface{} {
	form := map[string]interface{}{}
	for _, f := range ev.FormFields {
		switch f.Label {
		case "Team Name":
			form[f.ID] = team
		case "Team Leader Name":
			form[f.ID] = "Lead"
		case "Team Leader Email":
			form[f.ID] = email
		case "Team Size":
			form[f.ID] = 3
		case "Project Category":
			form[f.ID] = "AI/ML"
		}
	}
	return form
}

func post(r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerRegister(t *testing.T) {
	q, ann := &fakeQueue{}, &fakeAnnouncer{}
	r, ev := setup(t, q, ann)
	path := "/events/" + ev.ID.String() + "/register"

	w := post(r, path, RegisterRequest{FormData: hackathonForm(ev, "Rocket", "a@x.com")})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body struct {
		Data RegisterResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	p := body.Data.Participant
	assert.Equal(t, "Lead", p.Name)
	assert.Equal(t, "Rocket", p.TeamName)
	assert.Equal(t, "/passes/"+p.EntryUUID+".png", body.Data.PassURL)

	require.Len(t, q.jobs, 1)
	assert.Equal(t, p.EntryUUID, q.jobs[0].EntryUUID)
	assert.Equal(t, 1, ann.n)

	w = post(r, path, RegisterRequest{FormData: hackathonForm(ev, "ROCKET", "b@x.com")})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "team has already registered")
	assert.Equal(t, 1, ann.n)

	w = post(r, path, RegisterRequest{FormData: map[string]interface{}{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Team Name")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/"+ev.ID.String()+"/participants", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []models.Participant `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Data, 1)
}

func TestHandlerRegisterSurvivesQueueFailure(t *testing.T) {
	r, ev := setup(t, &fakeQueue{err: errors.New("redis down")}, nil)
	w := post(r, "/events/"+ev.ID.String()+"/register", RegisterRequest{FormData: hackathonForm(ev, "Comet", "c@x.com")})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHandlerRegisterUnknownEvent(t *testing.T) {
	r, _ := setup(t, nil, nil)
	w := post(r, "/events/"+uuid.NewString()+"/register", RegisterRequest{FormData: map[string]interface{}{}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
