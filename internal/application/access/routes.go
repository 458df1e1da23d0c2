package access

import "github.com/jhoicas/Inventario-portal/internal/domain/entity"

// Route es una ruta lógica de navegación del portal.
type Route string

// Superficie de navegación.
const (
	RouteEntry          Route = "/"
	RoutePublic         Route = "/public"
	RouteLogin          Route = "/login"
	RouteRegister       Route = "/register"
	RouteRegisterTenant Route = "/register-tenant"
	RouteDashboard      Route = "/dashboard"
	RouteProducts       Route = "/products"
	RouteTransactions   Route = "/transactions"
	RouteUsers          Route = "/admin/users"
	RouteTenantSettings Route = "/settings"
	RouteAdminTenants   Route = "/admin/tenants"
	RouteSelectTenant   Route = "/select-tenant"
	RouteProfile        Route = "/profile"

	// Páginas terminales de error
	RouteSuspended          Route = "/suspended"
	RouteUnauthorizedTenant Route = "/unauthorized-tenant"
	RouteTenantNotFound     Route = "/tenant-not-found"
	RouteTenantError        Route = "/tenant-error"
	RouteNotFound           Route = "/not-found"
)

// RoleLanding ruta de aterrizaje autenticada según el rol:
// superAdmin → gestión de tenants; tenantAdmin (y admin legacy) → dashboard del
// tenant; tenantManager → transacciones; el resto → catálogo de productos.
func RoleLanding(role string) Route {
	switch role {
	case entity.RoleSuperAdmin:
		return RouteAdminTenants
	case entity.RoleTenantAdmin, entity.RoleLegacyAdmin:
		return RouteDashboard
	case entity.RoleTenantManager:
		return RouteTransactions
	default:
		return RouteProducts
	}
}

// fallbackLanding destino cuando una regla de rol rechaza: nunca una ruta que el
// principal tampoco pueda alcanzar, así que es su propio aterrizaje de rol.
func fallbackLanding(p *entity.Principal) Route {
	if p == nil {
		return RouteLogin
	}
	return RoleLanding(p.Role)
}
