package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/pkg/response"
)

func TestWriteStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &models.ValidationError{Fields: []string{"Email"}}, http.StatusBadRequest},
		{"duplicate", fmt.Errorf("register: %w", &models.DuplicateError{Kind: models.DuplicateTeam}), http.StatusConflict},
		{"not found", &models.NotFoundError{Resource: "event", ID: "x"}, http.StatusNotFound},
		{"invalid token", models.ErrInvalidToken, http.StatusForbidden},
		{"identity exists", &models.IdentityError{Kind: models.IdentityAlreadyExists}, http.StatusConflict},
		{"identity credentials", &models.IdentityError{Kind: models.IdentityInvalidCredentials}, http.StatusUnauthorized},
		{"identity input", &models.IdentityError{Kind: models.IdentityInvalidInput}, http.StatusBadRequest},
		{"identity unavailable", &models.IdentityError{Kind: models.IdentityUnavailable}, http.StatusServiceUnavailable},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			Write(c, nil, tc.err)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestWriteValidationListsFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Write(c, nil, &models.ValidationError{Fields: []string{"Full Name", "Email"}})

	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, []string{"Full Name", "Email"}, body.Fields)
	assert.Equal(t, "please fill in: Full Name, Email", body.Error)
}

func TestWriteHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Write(c, nil, errors.New("pq: password authentication failed"))
	assert.NotContains(t, w.Body.String(), "password")
}

func TestWriteAccountExistsMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Write(c, nil, &models.IdentityError{Kind: models.IdentityAlreadyExists, Message: "email taken"})
	assert.Contains(t, w.Body.String(), "Try signing in instead")
}
