package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vex-labs/ticket-view/internal/api/dto"
	"github.com/vex-labs/ticket-view/internal/observability"
	"github.com/vex-labs/ticket-view/internal/service"
)

// StatsHandler serves the dashboard summary and service metrics.
type StatsHandler struct {
	service *service.ViewService
	metrics *observability.Metrics
}

// NewStatsHandler constructs handler.
func NewStatsHandler(viewService *service.ViewService, metrics *observability.Metrics) *StatsHandler {
	return &StatsHandler{service: viewService, metrics: metrics}
}

// Stats GET /stats.
func (h *StatsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStatsResponse(stats)})
}

// Metrics GET /metrics.
func (h *StatsHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
