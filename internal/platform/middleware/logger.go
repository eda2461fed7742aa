package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mediconnet/api/internal/platform/auth"
)

// Logger emits one structured line per request. When the request carried a
// staff token the line is tagged with the acting hospital, which is what ties
// the log stream back to a tenant.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			// Inner middleware swaps the request as it attaches identity,
			// so read it back after the chain ran.
			req := c.Request()

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}

			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Int64("bytes_out", c.Response().Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())
			if hospitalID := auth.HospitalIDFromContext(req.Context()); hospitalID != "" {
				evt = evt.Str("hospital_id", hospitalID)
			}
			evt.Msg("request")

			return err
		}
	}
}
