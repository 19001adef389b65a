package http

import (
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/http/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const msgInternalServerError = "Internal server error"

// NewHTTPErrorHandler maps errors returned by handlers and middleware to JSON
// responses. 5xx bodies never carry the underlying error.
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, message := classifyError(err)

		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		if requestID == "" {
			requestID = "unknown"
		}

		if code >= http.StatusInternalServerError {
			logger.Error("internal_server_error",
				zap.String("request_id", requestID),
				zap.Int("status", code),
				zap.Error(err))
			message = msgInternalServerError
		} else {
			logger.Debug("client_error",
				zap.String("request_id", requestID),
				zap.Int("status", code),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]interface{}{
				"error":      message,
				"request_id": requestID,
			})
		}
		if err != nil {
			logger.Error("failed to write error response", zap.Error(err))
		}
	}
}

func classifyError(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, fmt.Sprintf("%v", httpErr.Message)
	}
	return handler.MapToPublicError(err)
}
