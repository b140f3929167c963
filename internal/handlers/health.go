package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/virendra-maker/urmaxx-clone/internal/config"
	"github.com/virendra-maker/urmaxx-clone/internal/database"
	"github.com/virendra-maker/urmaxx-clone/internal/services"
)

// HealthHandler reports service health
type HealthHandler struct {
	Config *config.Config
	DB     *database.Handle
}

// Health handles GET /api/health
// @Summary Service health
// @Description Database and Authorizer reachability. Degraded when no database is configured.
// @Tags health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Config, h.DB)

	status := fiber.StatusOK
	if result.Status == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
