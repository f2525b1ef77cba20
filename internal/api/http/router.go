package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-router/internal/api/http/handlers"
	"github.com/spec-kit/ticket-router/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	AdminTickets   *handlers.AdminTicketsHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.Get("/departments", cfg.Tickets.Departments)
	app.Post("/tickets", cfg.Tickets.SubmitTicket)

	admin := app.Group("/admin")
	admin.Post("/login", cfg.Auth.Login)

	protected := admin.Group("", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	protected.Post("/logout", cfg.Auth.Logout)
	protected.Get("/tickets", cfg.AdminTickets.ListTickets)
	protected.Get("/tickets/:department/:id", cfg.AdminTickets.GetTicket)
	protected.Put("/tickets/:department/:id", cfg.AdminTickets.AddNote)
}
