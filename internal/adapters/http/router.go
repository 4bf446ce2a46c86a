package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebox/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebox/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotebox/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotebox/internal/adapters/http/session"
	"github.com/jsamuelsen/quotebox/internal/platform/config"
	"github.com/jsamuelsen/quotebox/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds page, vote and API requests.
const DefaultRequestTimeout = 10 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// AppName names the service in spans and metrics.
	AppName string

	Health *handlers.HealthHandler
	Pages  *handlers.PageHandler
	Votes  *handlers.VoteHandler
	API    *handlers.QuoteHandler

	// Sessions loads the visitor session for pages and votes.
	Sessions *session.Manager

	// Auth names the gateway headers checked on /api/v1/admin. Nil uses
	// the defaults.
	Auth *config.AuthConfig

	// Timeout is the request deadline. Zero disables it.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. OpenTelemetry - tracing and HTTP metrics
//  4. Logging - request logging (skips /-/ endpoints)
//  5. Timeout and session - per group
//
// Route groups:
//   - /-/ (internal): liveness, readiness and Prometheus metrics, no deadline
//   - / : HTML pages and the AJAX vote endpoints, with the visitor session
//   - /api/v1/ : JSON API
//   - /api/v1/admin/ : source listing and deletion, admin role required
func SetupRouter(engine *gin.Engine, cfg RouterConfig) error {
	if cfg.Pages == nil || cfg.Votes == nil || cfg.API == nil || cfg.Sessions == nil {
		return errors.New("router: pages, votes, API handlers and sessions are required")
	}

	tmpl, err := handlers.LoadTemplates()
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	engine.SetHTMLTemplate(tmpl)

	engine.Use(middleware.Recovery(), middleware.RequestID())
	engine.Use(telemetry.Middleware(cfg.AppName)...)
	engine.Use(middleware.Logging())

	engine.NoRoute(func(c *gin.Context) {
		dto.RespondWithErrorCode(c, dto.ErrorCodeNotFound, "no route for "+c.Request.Method+" "+c.Request.URL.Path)
	})

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(engine)
	}

	web := engine.Group("/", middleware.Timeout(cfg.Timeout), cfg.Sessions.Middleware())
	cfg.Pages.RegisterPageRoutes(web)
	cfg.Votes.RegisterVoteRoutes(web)

	apiV1 := engine.Group("/api/v1", middleware.Timeout(cfg.Timeout))
	cfg.API.RegisterQuoteRoutes(apiV1)

	adminRole := config.DefaultAdminRole
	if cfg.Auth != nil && cfg.Auth.AdminRole != "" {
		adminRole = cfg.Auth.AdminRole
	}

	cfg.API.RegisterAdminRoutes(apiV1.Group("/admin", middleware.RequireRole(cfg.Auth, adminRole)))

	return nil
}
