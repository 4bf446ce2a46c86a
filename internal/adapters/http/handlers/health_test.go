package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebox/internal/platform/metrics"
	"github.com/jsamuelsen/quotebox/internal/ports"
)

type mockReadiness struct {
	mock.Mock
}

func (m *mockReadiness) Ready(ctx context.Context) *ports.HealthResult {
	return m.Called(ctx).Get(0).(*ports.HealthResult)
}

func TestNewBuildInfo(t *testing.T) {
	bi := NewBuildInfo("1.0.0", "abc123", "2024-01-15T10:00:00Z")

	assert.Equal(t, "1.0.0", bi.Version)
	assert.Equal(t, "abc123", bi.Commit)
	assert.Equal(t, runtime.Version(), bi.GoVersion)
}

func TestHealthHandler_Liveness(t *testing.T) {
	handler := NewHealthHandler(&mockReadiness{}, BuildInfo{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/-/live", http.NoBody)

	handler.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name           string
		result         *ports.HealthResult
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "store healthy",
			result: &ports.HealthResult{
				Status: ports.HealthStatusHealthy,
				Checks: map[string]*ports.CheckResult{"sqlite": {Status: ports.HealthStatusHealthy}},
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"sqlite":{"status":"healthy"`,
		},
		{
			name: "store unreachable",
			result: &ports.HealthResult{
				Status: ports.HealthStatusUnhealthy,
				Checks: map[string]*ports.CheckResult{
					"sqlite": {Status: ports.HealthStatusUnhealthy, Message: "database is locked"},
				},
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "database is locked",
		},
		{
			name:           "no checks configured",
			result:         &ports.HealthResult{Status: ports.HealthStatusHealthy},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"healthy"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readiness := &mockReadiness{}
			readiness.On("Ready", mock.Anything).Return(tt.result).Once()

			handler := NewHealthHandler(readiness, BuildInfo{}, nil)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/-/ready", http.NoBody)

			handler.Readiness(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			readiness.AssertExpectations(t)
		})
	}
}

func TestHealthHandler_BuildInfoHandler(t *testing.T) {
	handler := NewHealthHandler(&mockReadiness{}, BuildInfo{Version: "1.2.3", Commit: "def456"}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/-/build", http.NoBody)

	handler.BuildInfoHandler(c)

	var resp BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, "def456", resp.Commit)
}

func TestHealthHandler_RegisterRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	collectors := metrics.New(reg)
	collectors.QuoteViewed()

	handler := NewHealthHandler(&mockReadiness{}, BuildInfo{}, metrics.Handler(reg))

	router := gin.New()
	handler.RegisterRoutes(router)

	routes := map[string]bool{}
	for _, r := range router.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{"GET /-/live", "GET /-/ready", "GET /-/build", "GET /-/metrics"} {
		assert.True(t, routes[want], "missing route: %s", want)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "quotebox_quote_views_total 1")
}

func TestHealthHandler_RegisterRoutesWithoutMetrics(t *testing.T) {
	router := gin.New()
	NewHealthHandler(&mockReadiness{}, BuildInfo{}, nil).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/metrics", http.NoBody))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
