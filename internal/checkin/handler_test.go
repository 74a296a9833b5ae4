package checkin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/internal/store"
)

type fakeEvents map[uuid.UUID]*models.Event

func (f fakeEvents) Get(_ context.Context, id uuid.UUID) (*models.Event, error) {
	if ev, ok := f[id]; ok {
		return ev, nil
	}
	return nil, &models.NotFoundError{Resource: "event", ID: id.String()}
}

type recordingAnnouncer struct{ got []*models.Participant }

func (r *recordingAnnouncer) CheckedIn(_ context.Context, p *models.Participant) {
	r.got = append(r.got, p)
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/checkin/:token", h.Lookup)
	r.POST("/checkin/:token", h.CheckIn)
	return r
}

func TestHandlerCheckInFlow(t *testing.T) {
	s := store.NewMemory()
	tok := uuid.NewString()
	p := seedParticipant(t, s, tok)
	ann := &recordingAnnouncer{}
	events := fakeEvents{p.EventID: {ID: p.EventID, Name: "Hackathon"}}
	r := newTestRouter(NewHandler(NewEngine(s), events, ann, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/checkin/"+tok, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"event_name":"Hackathon"`)
	assert.Contains(t, w.Body.String(), `"already_checked_in":false`)

	var body struct {
		Data PassView `json:"data"`
	}
	for i, wantAlready := range []bool{false, true} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/checkin/"+tok, nil))
		require.Equal(t, http.StatusOK, w.Code, "attempt %d", i)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, wantAlready, body.Data.AlreadyCheckedIn)
		assert.Equal(t, models.StatusCheckedIn, body.Data.Participant.CheckInStatus)
	}
	assert.Len(t, ann.got, 1, "only the first admission is announced")
}

func TestHandlerDeniesUnknownPass(t *testing.T) {
	r := newTestRouter(NewHandler(NewEngine(store.NewMemory()), nil, nil, nil))
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, "/checkin/"+uuid.NewString(), nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "access denied")
	}
}

func TestHandlerOrphanPassStillResolves(t *testing.T) {
	s := store.NewMemory()
	tok := uuid.NewString()
	seedParticipant(t, s, tok)
	r := newTestRouter(NewHandler(NewEngine(s), fakeEvents{}, nil, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/checkin/"+tok, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "event_name")
}
