package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/plantpal/plantpal-api/internal/api/handler"
)

// errorResponse mirrors handler.OperationResponse for requests that never
// reached a resolver.
type errorResponse struct {
	Data   any                      `json:"data"`
	Errors []handler.OperationError `json:"errors"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders echo errors (bad body, unknown route, bad arguments) with their status.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Uses the operation envelope: {"data": null, "errors": [{"message", "code"}]}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, oe := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, errorResponse{Errors: []handler.OperationError{oe}})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.OperationError) {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		return he.Code, handler.OperationError{
			Message: fmt.Sprintf("%v", he.Message),
			Code:    statusCode(he.Code),
		}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.OperationError{
		Message: "internal server error",
		Code:    handler.CodeInternal,
	}
}

// statusCode turns an HTTP status into an upper snake case error code,
// e.g. 404 → NOT_FOUND.
func statusCode(status int) string {
	if status == http.StatusBadRequest {
		return handler.CodeBadRequest
	}
	text := http.StatusText(status)
	if text == "" {
		return handler.CodeBadRequest
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
