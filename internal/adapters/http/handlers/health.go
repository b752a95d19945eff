// Package handlers serves the quote API and the operational /-/ endpoints.
package handlers

import (
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/quotebook/internal/ports"
)

// BuildInfo identifies the running binary. Version, Commit and BuildTime are
// set through ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo fills in the Go version. An empty commit falls back to the VCS
// revision the toolchain stamped into the binary, when there is one.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	if commit == "" {
		commit = vcsRevision()
	}

	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}

	return ""
}

// StoreStats summarises the quote store for operators.
type StoreStats struct {
	Quotes     int      `json:"quotes"`
	Categories []string `json:"categories"`
	Filter     string   `json:"filter"`
}

// HealthHandler serves the probe, build, metrics and stats endpoints.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
	stats     func() StoreStats
}

// NewHealthHandler returns a handler backed by registry. A nil registry makes
// readiness always succeed.
func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo) *HealthHandler {
	return &HealthHandler{registry: registry, buildInfo: buildInfo}
}

// WithStoreStats enables GET /-/stats, served from fn.
func (h *HealthHandler) WithStoreStats(fn func() StoreStats) *HealthHandler {
	h.stats = fn
	return h
}

type probeResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Liveness answers GET /-/live. It only proves the process serves HTTP.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, probeResponse{Status: "ok"})
}

// Readiness answers GET /-/ready.
// Storage failures answer 503. A failing remote source only marks the
// response degraded; it stays 200 because quotes are served locally.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.registry == nil {
		c.JSON(http.StatusOK, probeResponse{Status: string(ports.HealthStatusHealthy)})
		return
	}

	result := h.registry.CheckAll(c.Request.Context())

	code := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, probeResponse{Status: string(result.Status), Checks: result.Checks})
}

// Build answers GET /-/build.
func (h *HealthHandler) Build(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// Stats answers GET /-/stats.
func (h *HealthHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats())
}

// RegisterHealthRoutes mounts the endpoints on rg:
//   - GET live, ready and build
//   - GET metrics, the Prometheus default registry with the quotebook_* collectors
//   - GET stats, when WithStoreStats was called
func (h *HealthHandler) RegisterHealthRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Liveness)
	rg.GET("/ready", h.Readiness)
	rg.GET("/build", h.Build)
	rg.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if h.stats != nil {
		rg.GET("/stats", h.Stats)
	}
}

// RegisterHealthRoutesOnEngine mounts the endpoints under /-/.
func (h *HealthHandler) RegisterHealthRoutesOnEngine(engine *gin.Engine) {
	h.RegisterHealthRoutes(engine.Group("/-"))
}
