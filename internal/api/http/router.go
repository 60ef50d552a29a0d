package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/medcourse-service/internal/api/http/handlers"
	"github.com/spec-kit/medcourse-service/internal/auth"
	"github.com/spec-kit/medcourse-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Courses        *handlers.CoursesHandler
	Slots          *handlers.SlotsHandler
	Bookings       *handlers.BookingsHandler
	Enrollments    *handlers.EnrollmentsHandler
	Payments       *handlers.PaymentsHandler
	Promos         *handlers.PromosHandler
	Notifications  *handlers.NotificationsHandler
	Audit          *handlers.AuditHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Auth.ChangePassword)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/me", auth.RequireAnyRole(), cfg.Users.Me)
	users.Patch("/me", auth.RequireAnyRole(), cfg.Users.UpdateProfile)
	users.Get("/", auth.RequireRole(domain.RoleAdmin), cfg.Users.List)
	users.Get("/:id", auth.RequireAnyRole(), cfg.Users.Get)
	users.Post("/:id/suspend", auth.RequireRole(domain.RoleAdmin), cfg.Users.Suspend)
	users.Post("/:id/reinstate", auth.RequireRole(domain.RoleAdmin), cfg.Users.Reinstate)

	// Catalog reads are public; writes require an instructor or admin.
	courses := app.Group("/courses")
	courses.Get("/", cfg.Courses.List)
	courses.Get("/slug/:slug", cfg.Courses.GetBySlug)
	courses.Get("/:id", cfg.Courses.Get)
	courses.Get("/:id/reviews", cfg.Courses.ListReviews)

	instructorOrAdmin := auth.RequireRole(domain.RoleInstructor, domain.RoleAdmin)
	courses.Post("/", cfg.AuthMiddleware.Handle, instructorOrAdmin, cfg.Courses.Create)
	courses.Patch("/:id", cfg.AuthMiddleware.Handle, instructorOrAdmin, cfg.Courses.Update)
	courses.Post("/:id/publish", cfg.AuthMiddleware.Handle, instructorOrAdmin, cfg.Courses.Publish)
	courses.Post("/:id/archive", cfg.AuthMiddleware.Handle, instructorOrAdmin, cfg.Courses.Archive)
	courses.Post("/:id/reviews", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleStudent), cfg.Courses.AddReview)

	slots := app.Group("/slots")
	slots.Get("/", cfg.Slots.List)
	slots.Get("/:id", cfg.Slots.Get)
	slots.Post("/", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleInstructor), cfg.Slots.Create)
	slots.Patch("/:id/block", cfg.AuthMiddleware.Handle, instructorOrAdmin, cfg.Slots.Block)
	slots.Delete("/:id", cfg.AuthMiddleware.Handle, instructorOrAdmin, cfg.Slots.Delete)

	bookings := app.Group("/bookings", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	bookings.Post("/", auth.RequireRole(domain.RoleStudent), cfg.Bookings.Create)
	bookings.Get("/", cfg.Bookings.List)
	bookings.Get("/:id", cfg.Bookings.Get)
	bookings.Post("/:id/confirm", cfg.Bookings.Confirm)
	bookings.Post("/:id/cancel", cfg.Bookings.Cancel)
	bookings.Post("/:id/complete", cfg.Bookings.Complete)

	enrollments := app.Group("/enrollments", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	enrollments.Post("/", auth.RequireRole(domain.RoleStudent), cfg.Enrollments.Create)
	enrollments.Get("/", cfg.Enrollments.List)
	enrollments.Get("/:id", cfg.Enrollments.Get)
	enrollments.Post("/:id/cancel", cfg.Enrollments.Cancel)
	enrollments.Post("/:id/complete", cfg.Enrollments.Complete)

	payments := app.Group("/payments", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	payments.Post("/", cfg.Payments.Create)
	payments.Get("/", cfg.Payments.List)
	payments.Get("/:id", cfg.Payments.Get)
	payments.Post("/:id/succeed", cfg.Payments.Succeed)
	payments.Post("/:id/fail", cfg.Payments.Fail)
	payments.Post("/:id/refund", auth.RequireRole(domain.RoleAdmin), cfg.Payments.Refund)

	promos := app.Group("/promos", cfg.AuthMiddleware.Handle)
	promos.Post("/preview", auth.RequireAnyRole(), cfg.Promos.Preview)
	promos.Post("/", auth.RequireRole(domain.RoleAdmin), cfg.Promos.Create)
	promos.Get("/", auth.RequireRole(domain.RoleAdmin), cfg.Promos.List)
	promos.Post("/:id/deactivate", auth.RequireRole(domain.RoleAdmin), cfg.Promos.Deactivate)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	notifications.Get("/", cfg.Notifications.List)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/audit-logs", cfg.Audit.List)
}
