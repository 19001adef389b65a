package handler

import (
	"errors"
	"net/http"

	apperrors "storefront/pkg/errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// MapToPublicError maps internal errors to public-facing HTTP status codes and
// messages. Client errors carrying an AppError use its message.
func MapToPublicError(err error) (int, string) {
	status, msg := publicStatus(err)
	if status >= http.StatusInternalServerError {
		return status, msg
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		msg = appErr.Message
	}
	return status, msg
}

func publicStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, apperrors.ErrUnauthorized), errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "resource conflict"
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, "invalid input"
	default:
		// Never expose internal errors to clients
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondWithMappedError logs server-side failures and writes the public form.
func RespondWithMappedError(c echo.Context, logger *zap.Logger, err error, logMsg string) error {
	status, msg := MapToPublicError(err)
	if status >= http.StatusInternalServerError {
		logger.Error(logMsg,
			zap.String(logKeyRequestID, c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err))
	}
	return respondError(c, status, msg)
}
