package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/http/handlers"
	"github.com/spec-kit/crm-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	RBAC           *handlers.RBACHandler
	Users          *handlers.UsersHandler
	Portal         *handlers.PortalHandler
	Accounts       *handlers.AccountsHandler
	Contacts       *handlers.ContactsHandler
	Tasks          *handlers.TasksHandler
	AuthMiddleware *auth.AuthMiddleware
	LoginLimiter   *auth.LoginLimiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	mw := cfg.AuthMiddleware
	limit := cfg.LoginLimiter.Handler()

	api.Post("/auth/staff/login", limit, cfg.Users.Login)
	api.Post("/auth/staff/password/change", mw.RequireStaff, cfg.Users.ChangePassword)

	rbac := api.Group("/rbac", mw.RequireStaff, mw.RequirePermission("roles:manage"))
	rbac.Get("/roles", cfg.RBAC.ListRoles)
	rbac.Post("/roles", cfg.RBAC.CreateRole)
	rbac.Put("/roles/:id", cfg.RBAC.UpdateRole)
	rbac.Delete("/roles/:id", cfg.RBAC.DeleteRole)
	rbac.Get("/permissions", cfg.RBAC.ListPermissions)
	rbac.Post("/initialize", cfg.RBAC.Initialize)

	users := api.Group("/users", mw.RequireStaff, mw.RequirePermission("users:manage"))
	users.Get("/", cfg.Users.List)
	users.Post("/:id/role", cfg.Users.AssignRole)

	accounts := api.Group("/accounts", mw.RequireStaff)
	accounts.Get("/", mw.RequirePermission("accounts:read"), cfg.Accounts.List)
	accounts.Get("/:id", mw.RequirePermission("accounts:read"), cfg.Accounts.Get)
	accounts.Post("/", mw.RequirePermission("accounts:write"), cfg.Accounts.Create)
	accounts.Put("/:id", mw.RequirePermission("accounts:write"), cfg.Accounts.Update)

	contacts := api.Group("/contacts", mw.RequireStaff)
	contacts.Get("/", mw.RequirePermission("contacts:read"), cfg.Contacts.List)
	contacts.Post("/", mw.RequirePermission("contacts:write"), cfg.Contacts.Create)
	contacts.Put("/:id", mw.RequirePermission("contacts:write"), cfg.Contacts.Update)
	contacts.Post("/:id/portal-invite", mw.RequirePermission("contacts:write"), cfg.Contacts.Invite)

	tasks := api.Group("/tasks", mw.RequireStaff)
	tasks.Get("/", mw.RequirePermission("tasks:read"), cfg.Tasks.List)
	tasks.Post("/", mw.RequirePermission("tasks:write"), cfg.Tasks.Create)
	tasks.Put("/:id", mw.RequirePermission("tasks:write"), cfg.Tasks.Update)

	portal := api.Group("/portal")
	portal.Post("/login", limit, cfg.Portal.Login)
	portal.Post("/setup", cfg.Portal.Setup)
	portal.Get("/tasks", mw.RequirePortal, cfg.Portal.ListTasks)
	portal.Put("/tasks/:id/status", mw.RequirePortal, cfg.Portal.UpdateTaskStatus)
}
