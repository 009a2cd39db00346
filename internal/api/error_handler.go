package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/humanityclub/hco-backend/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

var kindStatus = map[domain.Kind]int{
	domain.KindInvalidInput:       http.StatusBadRequest,
	domain.KindInvalidCredentials: http.StatusUnauthorized,
	domain.KindUnauthenticated:    http.StatusUnauthorized,
	domain.KindInvalidToken:       http.StatusUnauthorized,
	domain.KindTokenExpired:       http.StatusUnauthorized,
	domain.KindForbidden:          http.StatusForbidden,
	domain.KindConflict:           http.StatusConflict,
	domain.KindNotFound:           http.StatusNotFound,
	domain.KindTooManyAttempts:    http.StatusTooManyRequests,
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status codes.
//   - Logs unexpected errors without leaking them to the client.
//   - Adds the wrapped cause as detail only when exposeDetail is set.
func NewHTTPErrorHandler(log zerolog.Logger, exposeDetail bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if !exposeDetail {
			body.Detail = ""
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		body := errorResponse{
			Error: fmt.Sprintf("%v", he.Message),
			Code:  statusCode(he.Code),
		}
		if he.Internal != nil {
			body.Detail = he.Internal.Error()
		}
		return he.Code, body
	}

	var de *domain.Error
	if errors.As(err, &de) {
		if status, ok := kindStatus[de.Kind]; ok {
			body := errorResponse{Error: de.Message, Code: string(de.Kind)}
			if de.Err != nil {
				body.Detail = de.Err.Error()
			}
			return status, body
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{
		Error:  "internal server error",
		Code:   string(domain.KindInternal),
		Detail: err.Error(),
	}
}

// statusCode derives a snake_case code such as "not_found" from an HTTP status.
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "http_error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
