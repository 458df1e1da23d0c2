package entry

import (
	"context"

	"github.com/jhoicas/Inventario-portal/internal/application/access"
	"github.com/jhoicas/Inventario-portal/internal/application/session"
	"github.com/jhoicas/Inventario-portal/internal/application/tenant"
	"github.com/jhoicas/Inventario-portal/internal/domain/entity"
	"github.com/jhoicas/Inventario-portal/pkg/logger"
)

// Outcome destino único de la entrada. Pending indica que alguna dependencia
// sigue cargando y la decisión aún no puede tomarse.
type Outcome struct {
	Pending bool
	Target  access.Route
	Reason  string
}

func to(target access.Route, reason string) Outcome {
	return Outcome{Target: target, Reason: reason}
}

// Decider combina el tenant resuelto y la sesión para elegir exactamente una ruta
// de aterrizaje en la entrada. La decisión es derivada e idempotente: mismas
// entradas, misma salida, sin re-disparos en bucle.
type Decider struct {
	tenants  *tenant.Store
	sessions *session.Store
	log      *logger.Logger
}

// NewDecider construye el decisor de entrada.
func NewDecider(tenants *tenant.Store, sessions *session.Store, log *logger.Logger) *Decider {
	if log == nil {
		log = logger.Nop()
	}
	return &Decider{tenants: tenants, sessions: sessions, log: log.Component("entry")}
}

// Decide elige el destino de entrada para la clave resuelta. No decide hasta que
// ambos stores terminan de cargar. Si el principal pertenece a un tenant que el
// origen no resolvía, dispara SwitchTenant una única vez y re-evalúa.
func (d *Decider) Decide(ctx context.Context, resolvedKey string) Outcome {
	if d.tenants.Loading() || d.sessions.Loading() {
		return Outcome{Pending: true}
	}

	out := d.evaluate(resolvedKey)

	// Recuperación: autenticado con tenant propio pero sin tenant resuelto.
	if out.Target == access.RouteSelectTenant {
		if p := d.sessions.Principal(); p != nil && p.TenantID != "" {
			if err := d.tenants.SwitchTenant(ctx, p.TenantID); err == nil {
				out = d.evaluate(p.TenantID)
			}
		}
	}

	d.log.Info().
		Str("key", resolvedKey).
		Str("target", string(out.Target)).
		Str("reason", out.Reason).
		Msg("decisión de entrada")
	return out
}

func (d *Decider) evaluate(resolvedKey string) Outcome {
	t := d.tenants.Current()
	p := d.sessions.Principal()

	if resolvedKey == "" && t == nil {
		return DecideUnresolved(p)
	}
	if t == nil {
		// Clave resuelta pero sin registro: fallo de resolución terminal.
		if serr := d.tenants.Err(); serr != nil && !serr.Fatal {
			return to(access.RouteTenantError, serr.Message)
		}
		return to(access.RouteTenantNotFound, "tenant no encontrado")
	}
	return DecideResolved(t, p)
}

// DecideResolved tabla de decisión con tenant resuelto. La suspensión manda sobre
// cualquier principal, incluido superAdmin.
func DecideResolved(t *entity.Tenant, p *entity.Principal) Outcome {
	if t.IsSuspended() {
		return to(access.RouteSuspended, "tenant suspendido")
	}
	if p == nil {
		return to(access.RoutePublic, "visitante anónimo")
	}
	if p.IsSuperAdmin() {
		return to(access.RoleLanding(entity.RoleSuperAdmin), "superAdmin")
	}
	if p.TenantID == t.ID {
		return to(access.RoleLanding(p.Role), "miembro del tenant")
	}
	return to(access.RouteUnauthorizedTenant, "el usuario pertenece a otro tenant")
}

// DecideUnresolved tabla de decisión en el dominio principal (sin tenant).
// El caso "tenantId presente" lo maneja Decide con SwitchTenant y re-evaluación;
// aquí se devuelve select-tenant como destino provisional.
func DecideUnresolved(p *entity.Principal) Outcome {
	if p == nil {
		return to(access.RouteRegisterTenant, "dominio principal sin sesión")
	}
	if p.IsSuperAdmin() {
		return to(access.RoleLanding(entity.RoleSuperAdmin), "superAdmin sin tenant")
	}
	if p.TenantID != "" {
		return to(access.RouteSelectTenant, "tenant del principal pendiente de resolver")
	}
	return to(access.RouteSelectTenant, "autenticado sin afiliación a tenant")
}
