package controller

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"doc-intelligence-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

func TestHealthReportsDependencies(t *testing.T) {
	app := fiber.New()
	ctrl := NewHealthController("1.0.0", map[string]HealthChecker{
		"database": func(context.Context) bool { return true },
		"redis":    func(context.Context) bool { return false },
	})
	ctrl.RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body dto.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}

	if body.Status != "degraded" {
		t.Errorf("status = %q, want degraded when a dependency is down", body.Status)
	}
	if body.Dependencies["database"] != "healthy" || body.Dependencies["redis"] != "unhealthy" {
		t.Errorf("dependencies = %v", body.Dependencies)
	}
	if body.Version != "1.0.0" {
		t.Errorf("version = %q", body.Version)
	}
}

func TestHealthAllHealthy(t *testing.T) {
	app := fiber.New()
	ctrl := NewHealthController("1.0.0", map[string]HealthChecker{
		"database": func(context.Context) bool { return true },
	})
	ctrl.RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body dto.HealthResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Status != "healthy" {
		t.Errorf("status = %q, want healthy", body.Status)
	}
}
