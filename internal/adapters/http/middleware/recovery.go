package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// Recovery must be installed first. A panicking handler is logged with its
// stack and answered with a generic 500; the panic value never reaches the
// client. When the handler had already started writing, the chain is only
// aborted.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				recovered(c, logger, r)
			}
		}()

		c.Next()
	}
}

func recovered(c *gin.Context, fallback *slog.Logger, r any) {
	logging.FromContextOr(c.Request.Context(), fallback).Error("panic recovered",
		slog.String("panic", fmt.Sprint(r)),
		slog.String("route", c.FullPath()),
		slog.String("trace_id", dto.GetTraceID(c)),
		slog.String("stack", string(debug.Stack())),
	)

	if c.Writer.Written() {
		c.Abort()
		return
	}

	dto.Abort(c, http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred"))
}
