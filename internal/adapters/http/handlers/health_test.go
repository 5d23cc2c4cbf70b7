package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/mocks"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// serveProbe mounts h under /- and performs GET path.
func serveProbe(t *testing.T, h *HealthHandler, path string) *httptest.ResponseRecorder {
	t.Helper()

	router := gin.New()
	h.RegisterHealthRoutesOnEngine(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))

	return w
}

func TestNewBuildInfo(t *testing.T) {
	bi := NewBuildInfo("0.3.1", "9f2c1e7", "2026-03-01T09:30:00Z")

	assert.Equal(t, BuildInfo{
		Version:   "0.3.1",
		Commit:    "9f2c1e7",
		BuildTime: "2026-03-01T09:30:00Z",
		GoVersion: runtime.Version(),
	}, bi)
}

func TestHealthHandler_Liveness(t *testing.T) {
	// The registry mock fails the test if liveness runs any check.
	w := serveProbe(t, NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}), "/-/live")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		result     *ports.HealthResult
		wantStatus int
		wantBody   string
	}{
		{
			name: "store and remote up",
			result: &ports.HealthResult{
				Status: ports.HealthStatusHealthy,
				Checks: map[string]*ports.CheckResult{
					"storage":      {Status: ports.HealthStatusHealthy},
					"quote-remote": {Status: ports.HealthStatusHealthy, Optional: true},
				},
			},
			wantStatus: http.StatusOK,
			wantBody:   `"status":"healthy"`,
		},
		{
			name: "remote down keeps serving",
			result: &ports.HealthResult{
				Status: ports.HealthStatusDegraded,
				Checks: map[string]*ports.CheckResult{
					"storage":      {Status: ports.HealthStatusHealthy},
					"quote-remote": {Status: ports.HealthStatusUnhealthy, Optional: true, Message: "circuit breaker open"},
				},
			},
			wantStatus: http.StatusOK,
			wantBody:   `"message":"circuit breaker open"`,
		},
		{
			name: "store down",
			result: &ports.HealthResult{
				Status: ports.HealthStatusUnhealthy,
				Checks: map[string]*ports.CheckResult{
					"storage": {Status: ports.HealthStatusUnhealthy, Message: "database is locked"},
				},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `"status":"unhealthy"`,
		},
		{
			name:       "nothing registered",
			result:     &ports.HealthResult{Status: ports.HealthStatusHealthy, Checks: map[string]*ports.CheckResult{}},
			wantStatus: http.StatusOK,
			wantBody:   `"status":"healthy"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := mocks.NewMockHealthRegistry(t)
			registry.EXPECT().CheckAll(mock.Anything).Return(tt.result)

			w := serveProbe(t, NewHealthHandler(registry, BuildInfo{}), "/-/ready")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestHealthHandler_Build(t *testing.T) {
	bi := BuildInfo{Version: "0.3.1", Commit: "9f2c1e7", BuildTime: "2026-03-01T09:30:00Z", GoVersion: "go1.25.7"}

	w := serveProbe(t, NewHealthHandler(mocks.NewMockHealthRegistry(t), bi), "/-/build")

	require.Equal(t, http.StatusOK, w.Code)

	var got BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, bi, got)
}

type fixedStats struct {
	quotes   []domain.Quote
	selected string
}

func (f fixedStats) Quotes() []domain.Quote    { return f.quotes }
func (f fixedStats) SelectedCategory() string { return f.selected }

func TestHealthHandler_Status(t *testing.T) {
	t.Run("reports list and backlog", func(t *testing.T) {
		handler := NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}).WithStats(fixedStats{
			quotes: []domain.Quote{
				{ID: "loc-1", Text: "Keep going", Category: "Motivation"},
				{ID: "srv-7", ServerID: "7", Text: "Be kind", Category: "Life"},
				{ID: "loc-2", Text: "Start now", Category: "Motivation"},
			},
			selected: "Life",
		})

		w := serveProbe(t, handler, "/-/status")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"quotes":3,"unsynced":2,"categories":2,"selected":"Life"}`, w.Body.String())
	})

	t.Run("empty list", func(t *testing.T) {
		handler := NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}).WithStats(fixedStats{selected: "All"})

		w := serveProbe(t, handler, "/-/status")

		assert.JSONEq(t, `{"quotes":0,"unsynced":0,"categories":0,"selected":"All"}`, w.Body.String())
	})

	t.Run("no stats attached", func(t *testing.T) {
		w := serveProbe(t, NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}), "/-/status")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHealthHandler_Metrics(t *testing.T) {
	w := serveProbe(t, NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}), "/-/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestHealthHandler_RegisterHealthRoutes(t *testing.T) {
	router := gin.New()
	NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}).RegisterHealthRoutes(router.Group("/-"))

	got := make([]string, 0, 5)
	for _, r := range router.Routes() {
		got = append(got, r.Method+" "+r.Path)
	}

	assert.ElementsMatch(t, []string{
		"GET /-/live",
		"GET /-/ready",
		"GET /-/build",
		"GET /-/status",
		"GET /-/metrics",
	}, got)
}
