package controller

import (
	"context"
	"time"

	"doc-intelligence-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// HealthChecker reports whether a single dependency is reachable.
type HealthChecker func(ctx context.Context) bool

type IHealthController interface {
	RegisterRoutes(app *fiber.App)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	version string
	checks  map[string]HealthChecker
}

func NewHealthController(version string, checks map[string]HealthChecker) IHealthController {
	return &healthController{
		version: version,
		checks:  checks,
	}
}

func (c *healthController) RegisterRoutes(app *fiber.App) {
	app.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	checkCtx, cancel := context.WithTimeout(ctx.Context(), 3*time.Second)
	defer cancel()

	dependencies := make(map[string]string, len(c.checks))
	status := "healthy"
	for name, check := range c.checks {
		if check(checkCtx) {
			dependencies[name] = "healthy"
		} else {
			dependencies[name] = "unhealthy"
			status = "degraded"
		}
	}

	return ctx.JSON(dto.HealthResponse{
		Status:       status,
		Version:      c.version,
		Timestamp:    time.Now().Format(time.RFC3339),
		Dependencies: dependencies,
	})
}
