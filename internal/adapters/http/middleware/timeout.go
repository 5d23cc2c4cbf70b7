package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// Timeout bounds every request by d. Handlers run on the request goroutine,
// so a manual sync that overruns is cancelled through its context rather
// than abandoned. If the deadline hit before anything was written, the
// client gets a 504 envelope.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return
		}

		logging.FromContext(ctx).Warn("request deadline exceeded",
			slog.String("route", c.FullPath()),
			slog.Duration("limit", d),
			slog.Bool("answered", c.Writer.Written()),
		)

		if !c.Writer.Written() {
			dto.Abort(c, http.StatusGatewayTimeout, dto.NewErrorResponse(dto.ErrorCodeTimeout, "request timeout exceeded"))
		}
	}
}
