package access

import "github.com/jhoicas/Inventario-portal/internal/domain/entity"

// Requirement flags declarativos de una ruta protegida.
type Requirement struct {
	RequireTenant        bool
	RequireAdmin         bool
	RequireTenantAdmin   bool
	RequireTenantManager bool
	RequireSuperAdmin    bool
}

// LoadingFlags estado de carga de los dos ejes independientes (tenant y sesión).
// Ninguna decisión es válida hasta que ambos terminen.
type LoadingFlags struct {
	TenantLoading  bool
	SessionLoading bool
}

// Verdict resultado de la evaluación.
type Verdict int

const (
	// Pending: alguna dependencia sigue cargando; no redirigir, no renderizar.
	Pending Verdict = iota
	// Allow: la ruta puede servirse.
	Allow
	// Redirect: la ruta se niega con destino concreto y motivo.
	Redirect
)

// Decision decisión de la política con destino y motivo cuando es Redirect.
type Decision struct {
	Verdict Verdict
	Target  Route
	Reason  string
}

func allow() Decision { return Decision{Verdict: Allow} }

func redirect(target Route, reason string) Decision {
	return Decision{Verdict: Redirect, Target: target, Reason: reason}
}

// Evaluate es la función pura de decisión: (principal, tenant, requisitos, carga) →
// permitir o redirigir. Las reglas se evalúan en orden fijo y la primera decisiva
// gana. Autenticación y presencia de tenant van antes que cualquier regla de rol
// (un rol sin principal no significa nada); superAdmin se evalúa aparte porque
// puede saltarse el requisito de tenant.
func Evaluate(p *entity.Principal, t *entity.Tenant, req Requirement, fl LoadingFlags) Decision {
	// 1. Dependencias aún resolviéndose: no es un redirect.
	if fl.TenantLoading || fl.SessionLoading {
		return Decision{Verdict: Pending}
	}

	// 2. Tenant requerido y ausente; superAdmin puede operar sin tenant.
	if req.RequireTenant && t == nil && !p.IsSuperAdmin() {
		return redirect(RouteLogin, "tenant requerido")
	}

	// 3. Sin principal no hay nada que evaluar por rol.
	if p == nil {
		return redirect(RouteLogin, "no autenticado")
	}

	// 4. Pertenencia al tenant: aunque la sesión ya la cruza en Verify, la política
	// la vuelve a negar para que un principal de otro tenant jamás reciba Allow.
	if t != nil && !p.IsSuperAdmin() && p.TenantID != t.ID {
		return redirect(RouteUnauthorizedTenant, "sin acceso a este tenant")
	}

	// 5. Rutas exclusivas de superAdmin.
	if req.RequireSuperAdmin && !p.IsSuperAdmin() {
		return redirect(fallbackLanding(p), "se requiere superAdmin")
	}

	// 6–8. Jerarquía de roles con orden total: una sola comparación por regla.
	if req.RequireAdmin && entity.RoleRank(p.Role) < entity.RoleRank(entity.RoleLegacyAdmin) {
		return redirect(fallbackLanding(p), "se requiere rol administrador")
	}
	if req.RequireTenantAdmin && entity.RoleRank(p.Role) < entity.RoleRank(entity.RoleTenantAdmin) {
		return redirect(fallbackLanding(p), "se requiere tenantAdmin")
	}
	if req.RequireTenantManager && entity.RoleRank(p.Role) < entity.RoleRank(entity.RoleTenantManager) {
		return redirect(fallbackLanding(p), "se requiere tenantManager")
	}

	return allow()
}
