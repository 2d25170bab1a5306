package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Coconut044/SmartTicketSystem/internal/api/http/handlers"
	"github.com/Coconut044/SmartTicketSystem/internal/auth"
	"github.com/Coconut044/SmartTicketSystem/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Lifecycle      *handlers.LifecycleHandler
	Assignment     *handlers.AssignmentHandler
	Comments       *handlers.CommentsHandler
	Categories     *handlers.CategoriesHandler
	Sla            *handlers.SlaHandler
	Notifications  *handlers.NotificationsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/register", cfg.Auth.Register)
	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("", cfg.AuthMiddleware)

	manage := auth.RequireRole(domain.UserRoleAdmin, domain.UserRoleSupportManager)
	adminOnly := auth.RequireRole(domain.UserRoleAdmin)

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	// Registered before /:id so "unassigned" is not captured as a ticket id.
	tickets.Get("/unassigned", auth.RequireStaff(), cfg.Assignment.UnassignedQueue)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", adminOnly, cfg.Tickets.DeleteTicket)
	tickets.Get("/:id/history", cfg.Tickets.ListHistory)
	tickets.Get("/:id/transitions", cfg.Lifecycle.AllowedTransitions)

	tickets.Post("/:id/start", auth.RequireStaff(), cfg.Lifecycle.StartWork)
	tickets.Post("/:id/resolve", auth.RequireStaff(), cfg.Lifecycle.Resolve)
	tickets.Post("/:id/close", auth.RequireStaff(), cfg.Lifecycle.Close)
	tickets.Post("/:id/reopen", cfg.Lifecycle.Reopen)
	tickets.Post("/:id/cancel", cfg.Lifecycle.Cancel)

	tickets.Post("/:id/assign", manage, cfg.Assignment.Assign)
	tickets.Post("/:id/auto-assign", manage, cfg.Assignment.AutoAssign)

	tickets.Post("/:id/comments", cfg.Comments.Add)
	tickets.Get("/:id/comments", cfg.Comments.List)

	api.Get("/agents/workload", auth.RequireStaff(), cfg.Assignment.Workload)

	categories := api.Group("/categories")
	categories.Get("", cfg.Categories.List)
	categories.Get("/:id", cfg.Categories.Get)
	categories.Post("", manage, cfg.Categories.Create)
	categories.Put("/:id", manage, cfg.Categories.Update)

	sla := api.Group("/sla-configurations", manage)
	sla.Get("", cfg.Sla.List)
	sla.Post("", cfg.Sla.Create)
	sla.Put("/:id", cfg.Sla.Update)
	sla.Delete("/:id", cfg.Sla.Deactivate)

	notifications := api.Group("/notifications")
	notifications.Get("", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)

	users := api.Group("/users")
	users.Get("/agents", auth.RequireStaff(), cfg.Users.ListAgents)
	users.Post("", adminOnly, cfg.Users.Create)
	users.Get("", adminOnly, cfg.Users.List)
	users.Get("/:id", adminOnly, cfg.Users.Get)
	users.Patch("/:id", adminOnly, cfg.Users.Update)
}
