package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// InternalMessage is the detail returned for any unexpected failure.
const InternalMessage = "Internal server error"

// ErrorResponse represents a standardized error response. Detail is the
// human-readable message; clients and the mobile gateway key off it.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Detail: e.Message,
		Code:   e.Code,
	}
}

// HTTPErrorHandler renders every error returned by a handler as
// {"detail": ...}. Errors that are neither *HTTPError nor *echo.HTTPError are
// logged and reported as a generic 500 so driver or library messages never
// reach the client.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := toResponse(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request().Context()).Error().
			Err(err).
			Int("status", status).
			Str("path", c.Path()).
			Msg("request failed")
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		zerolog.Ctx(c.Request().Context()).Error().Err(writeErr).Msg("write error response")
	}
}

func toResponse(err error) (int, ErrorResponse) {
	var appErr *HTTPError
	if errors.As(err, &appErr) {
		return appErr.StatusCode, appErr.ToErrorResponse()
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch m := he.Message.(type) {
		case ErrorResponse:
			return he.Code, m
		case string:
			return he.Code, ErrorResponse{Detail: m}
		case error:
			return he.Code, ErrorResponse{Detail: m.Error()}
		default:
			return he.Code, ErrorResponse{Detail: fmt.Sprint(m)}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{Detail: InternalMessage, Code: "INTERNAL_ERROR"}
}
