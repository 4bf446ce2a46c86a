// Package handlers implements the quotebox HTTP endpoints: the HTML pages,
// the AJAX vote and next-quote endpoints, the JSON API and the internal
// /-/ endpoints.
package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebox/internal/ports"
)

// BuildInfo contains build-time information injected with ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo creates a BuildInfo with the Go version automatically set.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// HealthHandler serves the /-/ endpoints.
type HealthHandler struct {
	readiness ports.Readiness
	buildInfo BuildInfo
	metrics   http.Handler
}

// NewHealthHandler creates a health handler. metrics serves /-/metrics and
// may be nil to leave the route out.
func NewHealthHandler(readiness ports.Readiness, buildInfo BuildInfo, metrics http.Handler) *HealthHandler {
	return &HealthHandler{
		readiness: readiness,
		buildInfo: buildInfo,
		metrics:   metrics,
	}
}

type livenessResponse struct {
	Status string `json:"status"`
}

// Liveness reports that the process is up. It checks no dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{Status: "ok"})
}

type readinessResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Readiness answers 503 while any readiness check fails.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.readiness.Ready(c.Request.Context())

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, readinessResponse{
		Status: string(result.Status),
		Checks: result.Checks,
	})
}

// BuildInfoHandler returns version, commit and build time.
func (h *HealthHandler) BuildInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// RegisterRoutes mounts the operational endpoints under /-:
//   - GET /-/live
//   - GET /-/ready
//   - GET /-/build
//   - GET /-/metrics
func (h *HealthHandler) RegisterRoutes(engine *gin.Engine) {
	rg := engine.Group("/-")

	rg.GET("/live", h.Liveness)
	rg.GET("/ready", h.Readiness)
	rg.GET("/build", h.BuildInfoHandler)

	if h.metrics != nil {
		rg.GET("/metrics", gin.WrapH(h.metrics))
	}
}
