package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestIDHeader carries the request id between the gateway and its upstreams.
const RequestIDHeader = echo.HeaderXRequestID

type requestIDKey struct{}

// Setup configures the global zerolog logger. Unknown levels fall back to info.
func Setup(level, service string) {
	SetupWriter(os.Stdout, level, service)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, level, service string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	log.Logger = zerolog.New(w).With().Timestamp().Str("service", service).Logger()
	zerolog.DefaultContextLogger = &log.Logger
}

// WithRequestID stores the request id for outbound propagation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Middleware attaches a request-scoped logger carrying the request id to the
// request context and logs one line per request. It expects echo's RequestID
// middleware to run first.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = req.Header.Get(echo.HeaderXRequestID)
			}

			logger := log.With().Str("request_id", requestID).Logger()
			ctx := logger.WithContext(WithRequestID(req.Context(), requestID))
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				// let the error handler write the response so the status is final
				c.Error(err)
			}

			status := c.Response().Status
			var event *zerolog.Event
			switch {
			case status >= 500:
				event = logger.Error()
			case status >= 400:
				event = logger.Warn()
			default:
				event = logger.Info()
			}

			event.
				Str("method", req.Method).
				Str("path", c.Path()).
				Int("status", status).
				Dur("duration", time.Since(start)).
				Str("client_ip", c.RealIP()).
				Str("user_agent", req.UserAgent()).
				Msg("HTTP request")

			return nil
		}
	}
}
