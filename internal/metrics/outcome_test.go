package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/eventflow/backend/internal/models"
)

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, OutcomeOK, OutcomeOf(nil))
	assert.Equal(t, OutcomeInvalid, OutcomeOf(&models.ValidationError{}))
	assert.Equal(t, OutcomeDuplicate, OutcomeOf(fmt.Errorf("wrap: %w", &models.DuplicateError{})))
	assert.Equal(t, OutcomeNotFound, OutcomeOf(&models.NotFoundError{Resource: "event"}))
	assert.Equal(t, OutcomeDenied, OutcomeOf(models.ErrInvalidToken))
	assert.Equal(t, OutcomeError, OutcomeOf(errors.New("boom")))
}

func TestCountersAcceptOutcomes(t *testing.T) {
	before := testutil.ToFloat64(Registrations.WithLabelValues(OutcomeDuplicate))
	Registrations.WithLabelValues(OutcomeDuplicate).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Registrations.WithLabelValues(OutcomeDuplicate)))
}
