package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/mocks"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

func probeEngine(registry ports.HealthRegistry, build BuildInfo) *gin.Engine {
	engine := gin.New()
	NewHealthHandler(registry, build).RegisterHealthRoutes(engine)

	return engine
}

func probe(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	return w
}

func TestNewBuildInfo(t *testing.T) {
	bi := NewBuildInfo("1.4.0", "9f1c2e", "2026-03-02T08:00:00Z")

	assert.Equal(t, BuildInfo{
		Version:   "1.4.0",
		Commit:    "9f1c2e",
		BuildTime: "2026-03-02T08:00:00Z",
		GoVersion: runtime.Version(),
	}, bi)
}

func TestHealthHandler_LivenessChecksNothing(t *testing.T) {
	registry := mocks.NewMockHealthRegistry(t)

	w := probe(probeEngine(registry, BuildInfo{}), "/-/live")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

// Readiness is exercised against the real registry so the status codes
// follow from which checks fail.
type stubCheck struct {
	name string
	err  error
}

func (s stubCheck) Name() string                  { return s.name }
func (s stubCheck) Check(_ context.Context) error { return s.err }

func TestHealthHandler_Readiness(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name     string
		critical []stubCheck
		optional []stubCheck
		wantCode int
		wantBody string
	}{
		{name: "nothing registered", wantCode: http.StatusOK, wantBody: "healthy"},
		{
			name:     "all up",
			critical: []stubCheck{{name: "storage"}, {name: "session"}},
			optional: []stubCheck{{name: "remote-quotes"}},
			wantCode: http.StatusOK,
			wantBody: "healthy",
		},
		{
			name:     "remote down degrades",
			critical: []stubCheck{{name: "storage"}},
			optional: []stubCheck{{name: "remote-quotes", err: down}},
			wantCode: http.StatusOK,
			wantBody: "degraded",
		},
		{
			name:     "storage down is unhealthy",
			critical: []stubCheck{{name: "storage", err: down}},
			optional: []stubCheck{{name: "remote-quotes"}},
			wantCode: http.StatusServiceUnavailable,
			wantBody: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := ports.NewHealthRegistry()
			for _, c := range tt.critical {
				require.NoError(t, registry.Register(c))
			}

			for _, c := range tt.optional {
				require.NoError(t, registry.RegisterOptional(c))
			}

			w := probe(probeEngine(registry, BuildInfo{}), "/-/ready")

			assert.Equal(t, tt.wantCode, w.Code)

			var got ports.HealthResult
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, ports.HealthStatus(tt.wantBody), got.Status)
			assert.Len(t, got.Checks, len(tt.critical)+len(tt.optional))
		})
	}
}

func TestHealthHandler_ReadinessReportsCheckMessage(t *testing.T) {
	registry := mocks.NewMockHealthRegistry(t)
	registry.EXPECT().CheckAll(mock.Anything).Return(&ports.HealthResult{
		Status: ports.HealthStatusDegraded,
		Checks: map[string]*ports.CheckResult{
			"remote-quotes": {Status: ports.HealthStatusUnhealthy, Optional: true, Message: "circuit open"},
		},
	})

	w := probe(probeEngine(registry, BuildInfo{}), "/-/ready")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "circuit open")
}

func TestHealthHandler_Build(t *testing.T) {
	build := BuildInfo{Version: "1.2.3", Commit: "def456", BuildTime: "2026-02-01T12:00:00Z", GoVersion: "go1.25.7"}

	w := probe(probeEngine(mocks.NewMockHealthRegistry(t), build), "/-/build")

	require.Equal(t, http.StatusOK, w.Code)

	var got BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, build, got)
}

func TestHealthHandler_Metrics(t *testing.T) {
	w := probe(probeEngine(mocks.NewMockHealthRegistry(t), BuildInfo{}), "/-/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
