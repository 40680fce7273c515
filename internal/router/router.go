package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/apsas-edu/apsas-api/internal/config"
	"github.com/apsas-edu/apsas-api/internal/handler"
	"github.com/apsas-edu/apsas-api/internal/middleware"
	"github.com/apsas-edu/apsas-api/internal/models"
	"github.com/apsas-edu/apsas-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	GradingGroupHandler   *handler.GradingGroupHandler
	SubmissionHandler     *handler.SubmissionHandler
	GradingSessionHandler *handler.GradingSessionHandler
	AppReleaseHandler     *handler.AppReleaseHandler
	JWTMiddleware         fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Grading groups (score overview, report export, roster import). Report
	// exports build a workbook per request, hence the rate limit.
	if deps.GradingGroupHandler != nil {
		groups := api.Group("/grading-groups", jwtMiddleware, middleware.RequireGradingStaff(), middleware.RateLimit("grading", 60, time.Minute))
		deps.GradingGroupHandler.Register(groups)
	}

	// Submissions
	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware, middleware.RequireGradingStaff())
		deps.SubmissionHandler.Register(submissions)
	}

	// Grading sessions
	if deps.GradingSessionHandler != nil {
		sessions := api.Group("/grading-sessions", jwtMiddleware, middleware.RequireGradingStaff())
		deps.GradingSessionHandler.Register(sessions)
	}

	// App releases: download link is public, management is admin only
	if deps.AppReleaseHandler != nil {
		downloads := api.Group("/app-releases")
		deps.AppReleaseHandler.RegisterPublic(downloads)

		admin := downloads.Group("", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.AppReleaseHandler.Register(admin)
	}
}
