// Package apierr maps domain errors onto HTTP responses.
package apierr

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/pkg/response"
)

// AccountExistsMessage is shown when sign-up hits an existing email.
const AccountExistsMessage = "An account with this email already exists. Try signing in instead."

// Write sends the response matching err. Unknown errors are logged and answered with a bare 500.
func Write(c *gin.Context, logger *zap.Logger, err error) {
	var (
		verr *models.ValidationError
		derr *models.DuplicateError
		nerr *models.NotFoundError
		ierr *models.IdentityError
	)
	switch {
	case errors.As(err, &verr):
		response.Invalid(c, verr.Error(), verr.Fields)
	case errors.As(err, &derr):
		response.Conflict(c, derr.Error())
	case errors.As(err, &nerr):
		response.NotFound(c, nerr.Error())
	case errors.Is(err, models.ErrInvalidToken):
		response.Forbidden(c, "access denied")
	case errors.As(err, &ierr):
		writeIdentity(c, logger, ierr)
	default:
		if logger != nil {
			logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		response.Internal(c, "internal error")
	}
}

func writeIdentity(c *gin.Context, logger *zap.Logger, err *models.IdentityError) {
	switch err.Kind {
	case models.IdentityInvalidInput:
		response.BadRequest(c, err.Error())
	case models.IdentityAlreadyExists:
		response.Conflict(c, AccountExistsMessage)
	case models.IdentityInvalidCredentials, models.IdentityInvalidSession:
		response.Unauthorized(c, err.Error())
	default:
		if logger != nil {
			logger.Error("identity provider unavailable", zap.Error(err))
		}
		response.ServiceUnavailable(c, "identity service unavailable")
	}
}
