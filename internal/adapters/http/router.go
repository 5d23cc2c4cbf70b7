package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotesync/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds /api/v1 requests when the server config
// leaves request_timeout unset.
const DefaultRequestTimeout = 30 * time.Second

// probePaths are polled constantly and kept out of logs and traces.
var probePaths = []string{"/-/live", "/-/ready", "/-/metrics"}

// RouterConfig is everything SetupRouter mounts. A nil handler leaves its
// routes out.
type RouterConfig struct {
	Logger    *slog.Logger
	AppConfig *config.AppConfig

	HealthHandler *handlers.HealthHandler
	QuoteHandler  *handlers.QuoteHandler
	SyncHandler   *handlers.SyncHandler

	// Timeout applies to /api/v1 only, so it also bounds a manual sync.
	Timeout time.Duration
}

// NewDefaultRouterConfig builds a RouterConfig from the loaded config.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	cfg *config.Config,
	health *handlers.HealthHandler,
	quotes *handlers.QuoteHandler,
	sync *handlers.SyncHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AppConfig:     &cfg.App,
		HealthHandler: health,
		QuoteHandler:  quotes,
		SyncHandler:   sync,
		Timeout:       cmpDuration(cfg.Server.RequestTimeout, DefaultRequestTimeout),
	}
}

// SetupRouter installs the middleware chain and every route on engine.
//
// Recovery runs outermost, then request and correlation IDs, tracing and
// request logging. Operational routes live under /-/ and carry no deadline;
// the quote API lives under /api/v1 behind the request timeout. Unknown
// paths get the JSON error envelope.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.AppConfig.Name, probePaths...)...)
	engine.Use(middleware.Logging(cfg.Logger, probePaths...))

	engine.NoRoute(func(c *gin.Context) {
		dto.Abort(c, http.StatusNotFound,
			dto.NewErrorResponse(dto.ErrorCodeNotFound, "no route for "+c.Request.Method+" "+c.Request.URL.Path))
	})

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	api := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		api.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterQuoteRoutes(api)
	}

	if cfg.SyncHandler != nil {
		cfg.SyncHandler.RegisterSyncRoutes(api)
	}
}

func cmpDuration(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}

	return fallback
}
