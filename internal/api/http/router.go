package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/guardline/report-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Reports *handlers.ReportsHandler
	Chat    *handlers.ChatHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Get("/reports", cfg.Reports.ListReports)
	api.Post("/reports", cfg.Reports.CreateReport)
	api.Get("/reports/:ticket_id", cfg.Reports.GetReport)
	api.Patch("/reports/:ticket_id/status", cfg.Reports.UpdateStatus)

	api.Post("/chat", cfg.Chat.SendMessage)
	api.Get("/chat/:session_id", cfg.Chat.GetHistory)
}
