package metrics

import (
	"errors"

	"github.com/eventflow/backend/internal/models"
)

// OutcomeOf classifies err for the outcome label.
func OutcomeOf(err error) string {
	var (
		verr *models.ValidationError
		derr *models.DuplicateError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &verr):
		return OutcomeInvalid
	case errors.As(err, &derr):
		return OutcomeDuplicate
	case models.IsNotFound(err):
		return OutcomeNotFound
	case errors.Is(err, models.ErrInvalidToken):
		return OutcomeDenied
	default:
		return OutcomeError
	}
}
