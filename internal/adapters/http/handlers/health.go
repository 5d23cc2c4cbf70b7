// Package handlers provides the Gin handlers for probes, quotes and sync.
package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// BuildInfo describes the running binary. Version, Commit and BuildTime are
// set with -ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{Version: version, Commit: commit, BuildTime: buildTime, GoVersion: runtime.Version()}
}

// QuoteStats is what /-/status reads from the quote list.
type QuoteStats interface {
	Quotes() []domain.Quote
	SelectedCategory() string
}

// HealthHandler serves the operational routes under /-.
type HealthHandler struct {
	registry ports.HealthRegistry
	build    BuildInfo
	stats    QuoteStats
	metrics  http.Handler
}

// NewHealthHandler returns probes backed by registry. /-/status answers 404
// until WithStats is called.
func NewHealthHandler(registry ports.HealthRegistry, build BuildInfo) *HealthHandler {
	return &HealthHandler{registry: registry, build: build, metrics: promhttp.Handler()}
}

func (h *HealthHandler) WithStats(stats QuoteStats) *HealthHandler {
	h.stats = stats
	return h
}

type probeResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Liveness only proves the process answers. It runs no checks.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, probeResponse{Status: "ok"})
}

// Readiness answers 503 only when a required check fails. A degraded result
// (the remote is down but the store is fine) is still ready: the list can be
// read and added to while sync waits for the remote.
func (h *HealthHandler) Readiness(c *gin.Context) {
	res := h.registry.CheckAll(c.Request.Context())

	code := http.StatusOK
	if res.Status == ports.HealthStatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, probeResponse{Status: string(res.Status), Checks: res.Checks})
}

func (h *HealthHandler) BuildInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.build)
}

type statusResponse struct {
	Quotes     int    `json:"quotes"`
	Unsynced   int    `json:"unsynced"`
	Categories int    `json:"categories"`
	Selected   string `json:"selected"`
}

// Status reports the list size, the push backlog and the active filter.
func (h *HealthHandler) Status(c *gin.Context) {
	if h.stats == nil {
		dto.Abort(c, http.StatusNotFound, dto.NewErrorResponse(dto.ErrorCodeNotFound, "status reporting is not enabled"))
		return
	}

	quotes := h.stats.Quotes()

	unsynced := 0
	for _, q := range quotes {
		if !q.Synced() {
			unsynced++
		}
	}

	c.JSON(http.StatusOK, statusResponse{
		Quotes:     len(quotes),
		Unsynced:   unsynced,
		Categories: len(domain.Categories(quotes)),
		Selected:   h.stats.SelectedCategory(),
	})
}

// RegisterHealthRoutes mounts every probe on rg.
func (h *HealthHandler) RegisterHealthRoutes(rg *gin.RouterGroup) {
	routes := map[string]gin.HandlerFunc{
		"/live":    h.Liveness,
		"/ready":   h.Readiness,
		"/build":   h.BuildInfoHandler,
		"/status":  h.Status,
		"/metrics": gin.WrapH(h.metrics),
	}

	for path, handle := range routes {
		rg.GET(path, handle)
	}
}

// RegisterHealthRoutesOnEngine mounts the probes under /-.
func (h *HealthHandler) RegisterHealthRoutesOnEngine(engine *gin.Engine) {
	h.RegisterHealthRoutes(engine.Group("/-"))
}
