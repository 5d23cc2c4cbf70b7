package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// Logging writes one line per served request through the request's context
// logger, which already carries request_id and correlation_id. logger is
// the fallback. Requests for skipPaths are not logged.
//
// The line's level follows the status: info, warn from 400, error from 500.
// Arrival is logged at trace.
func Logging(logger *slog.Logger, skipPaths ...string) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	skipped := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skipped[p] = true
	}

	return func(c *gin.Context) {
		if skipped[c.Request.URL.Path] {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := logging.FromContextOr(ctx, logger)
		start := time.Now()
		target := c.Request.URL.RequestURI()

		log.Log(ctx, logging.LevelTrace, "request received",
			slog.Group("http",
				slog.String("method", c.Request.Method),
				slog.String("target", target),
				slog.String("client_ip", c.ClientIP()),
				slog.String("user_agent", c.Request.UserAgent()),
			),
		)

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			slog.String("method", c.Request.Method),
			slog.String("target", target),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Int("bytes", c.Writer.Size()),
			slog.Duration("latency", time.Since(start)),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, slog.String("errors", c.Errors.String()))
		}

		log.Log(ctx, levelFor(status), "request served", slog.Group("http", fields...))
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
