package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/quizhub-api/internal/config"
	"github.com/noah-isme/quizhub-api/internal/handler"
	"github.com/noah-isme/quizhub-api/internal/middleware"
	"github.com/noah-isme/quizhub-api/internal/models"
	"github.com/noah-isme/quizhub-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DB                   *gorm.DB
	AuthHandler          *handler.AuthHandler
	QuizHandler          *handler.QuizHandler
	StudentHandler       *handler.StudentHandler
	AttemptHandler       *handler.AttemptHandler
	StatsHandler         *handler.StatsHandler
	AdminUserHandler     *handler.AdminUserHandler
	AdminActivityHandler *handler.AdminActivityHandler
	JWTMiddleware        fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}

	educatorRoles := middleware.RequireRole(string(models.RoleEducator), string(models.RoleAdmin))

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), jwtMiddleware)
	}

	if deps.QuizHandler != nil {
		deps.QuizHandler.Register(api.Group("/quizzes", jwtMiddleware, educatorRoles))
	}

	if deps.StatsHandler != nil {
		deps.StatsHandler.RegisterEducator(api.Group("/educator", jwtMiddleware, educatorRoles))
	}

	student := api.Group("/student", jwtMiddleware, middleware.RequireRole(string(models.RoleStudent)))
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(student, middleware.RateLimit("enroll", cfg.EnrollRateLimit, time.Minute))
	}
	if deps.StatsHandler != nil {
		deps.StatsHandler.RegisterStudent(student)
	}

	if deps.AttemptHandler != nil {
		deps.AttemptHandler.Register(api.Group("/attempts", jwtMiddleware))
	}

	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(string(models.RoleAdmin)))
	if deps.AdminUserHandler != nil {
		deps.AdminUserHandler.RegisterUsers(admin.Group("/users"))
		deps.AdminUserHandler.RegisterEducators(admin.Group("/educators"))
	}
	if deps.AdminActivityHandler != nil {
		deps.AdminActivityHandler.Register(admin.Group("/activity"))
	}
}
