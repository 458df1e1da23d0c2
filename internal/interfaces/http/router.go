package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-portal/internal/application/access"
	"github.com/jhoicas/Inventario-portal/internal/application/entry"
	"github.com/jhoicas/Inventario-portal/internal/application/session"
	"github.com/jhoicas/Inventario-portal/internal/application/tenant"
	"github.com/jhoicas/Inventario-portal/internal/infrastructure/backend"
	"github.com/jhoicas/Inventario-portal/internal/infrastructure/branding"
	"github.com/jhoicas/Inventario-portal/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Resolver *tenant.Resolver
	Tenants  *tenant.Store
	Sessions *session.Store
	Decider  *entry.Decider
	Backend  *backend.Client
	Branding *branding.Context
	Log      *logger.Logger
}

// Router registra las rutas del portal. Toda petición pasa por la resolución de
// tenant y la verificación de sesión; los guards declaran sus requisitos por ruta.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	app.Use(TenantMiddleware(deps.Resolver, deps.Tenants, log.Component("tenant-mw")))
	app.Use(SessionMiddleware(deps.Sessions, log.Component("session-mw")))

	guard := func(req access.Requirement) fiber.Handler {
		return Guard(req, deps.Tenants, deps.Sessions, log.Component("guard"))
	}

	entryHandler := NewEntryHandler(deps.Decider, deps.Sessions)
	authHandler := NewAuthHandler(deps.Sessions, deps.Tenants, deps.Backend)
	tenantHandler := NewTenantHandler(deps.Tenants, deps.Sessions, deps.Branding)
	pagesHandler := NewPagesHandler(deps.Tenants, deps.Sessions, deps.Branding)
	proxyHandler := NewProxyHandler(deps.Backend, deps.Sessions, log.Component("proxy"))
	dashboardHandler := NewDashboardHandler(deps.Backend, deps.Tenants, deps.Sessions)

	// Entrada: una sola decisión determinista de aterrizaje.
	app.Get("/", entryHandler.Enter)
	app.Get("/auth-redirect", entryHandler.AuthRedirect)

	// Páginas públicas y terminales.
	app.Get(string(access.RoutePublic), pagesHandler.Public)
	app.Get(string(access.RouteLogin), pagesHandler.Login)
	app.Get(string(access.RouteRegisterTenant), pagesHandler.RegisterTenant)
	app.Get(string(access.RouteRegister), pagesHandler.RegisterTenant)
	app.Get(string(access.RouteSelectTenant), pagesHandler.SelectTenant)
	app.Get(string(access.RouteSuspended), pagesHandler.Suspended)
	app.Get(string(access.RouteUnauthorizedTenant), pagesHandler.UnauthorizedTenant)
	app.Get(string(access.RouteTenantNotFound), pagesHandler.TenantNotFound)
	app.Get(string(access.RouteTenantError), pagesHandler.TenantError)
	app.Get("/branding.css", tenantHandler.BrandingCSS)

	// Pantallas protegidas: los flags declarativos de cada ruta.
	app.Get(string(access.RouteDashboard),
		guard(access.Requirement{RequireTenant: true}), pagesHandler.Dashboard)
	app.Get(string(access.RouteProducts),
		guard(access.Requirement{RequireTenant: true}), pagesHandler.Products)
	app.Get(string(access.RouteTransactions),
		guard(access.Requirement{RequireTenant: true, RequireTenantManager: true}), pagesHandler.Transactions)
	app.Get(string(access.RouteUsers),
		guard(access.Requirement{RequireTenant: true, RequireTenantAdmin: true}), pagesHandler.UsersAdmin)
	app.Get(string(access.RouteTenantSettings),
		guard(access.Requirement{RequireTenant: true, RequireTenantAdmin: true}), pagesHandler.TenantSettings)
	app.Get(string(access.RouteAdminTenants),
		guard(access.Requirement{RequireSuperAdmin: true}), pagesHandler.AdminTenants)
	app.Get(string(access.RouteProfile),
		guard(access.Requirement{}), pagesHandler.Profile)

	api := app.Group("/api")

	// Auth (público).
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/session", authHandler.Session)
	authGroup.Post("/end-impersonation", authHandler.EndImpersonation)

	// Auth (protegido por rol).
	authGroup.Get("/users",
		guard(access.Requirement{RequireTenant: true, RequireAdmin: true}), authHandler.Users)
	authGroup.Post("/register",
		guard(access.Requirement{RequireTenant: true, RequireTenantAdmin: true}), authHandler.RegisterUser)

	// Tenant actual y branding.
	api.Get("/tenant", tenantHandler.Info)
	api.Get("/branding", tenantHandler.Branding)
	api.Post("/tenant/switch", tenantHandler.Switch)
	api.Post("/tenants/register", authHandler.RegisterTenant)

	// Administración global (solo superAdmin).
	admin := api.Group("/admin", guard(access.Requirement{RequireSuperAdmin: true}))
	admin.Post("/impersonate/:userId", authHandler.Impersonate)
	admin.All("/tenants", proxyHandler.Forward)
	admin.All("/tenants/*", proxyHandler.Forward)

	// Datos de las pantallas: reenvío con bearer + tenant.
	dashboards := api.Group("/dashboard", guard(access.Requirement{RequireTenant: true}))
	dashboards.Get("/summary", dashboardHandler.Summary)

	dataGuard := guard(access.Requirement{RequireTenant: true})
	api.All("/products", dataGuard, proxyHandler.Forward)
	api.All("/products/*", dataGuard, proxyHandler.Forward)
	api.All("/sales", dataGuard, proxyHandler.Forward)
	api.All("/sales/*", dataGuard, proxyHandler.Forward)
	api.All("/purchases", dataGuard, proxyHandler.Forward)
	api.All("/purchases/*", dataGuard, proxyHandler.Forward)

	// Ruta inexistente.
	app.Use(pagesHandler.NotFound)
}
