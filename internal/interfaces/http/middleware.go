package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-portal/internal/application/session"
	"github.com/jhoicas/Inventario-portal/internal/application/tenant"
	"github.com/jhoicas/Inventario-portal/internal/domain"
	"github.com/jhoicas/Inventario-portal/pkg/logger"
)

// Locals keys del portal.
const (
	LocalTenantKey = "tenant_key"
)

// HeaderTenant override explícito de tenant entrante (compatibilidad con la SPA).
const HeaderTenant = "X-Tenant-ID"

// TenantMiddleware re-resuelve la clave de tenant en CADA navegación (nunca se
// cachea entre cambios de host) y dispara la carga solo cuando la clave cambia.
// Los fallos de resolución no cortan aquí: las páginas terminales y los guards
// deciden qué hacer con un tenant ausente.
func TenantMiddleware(resolver *tenant.Resolver, store *tenant.Store, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		param := c.Query("tenant")
		if param == "" {
			param = c.Get(HeaderTenant)
		}
		key := resolver.Resolve(tenant.Context{
			Host:  c.Hostname(),
			Param: param,
		})
		c.Locals(LocalTenantKey, key)

		if err := store.Load(c.Context(), key); err != nil && !domain.IsStale(err) {
			log.Debug().Str("key", key).Err(err).Msg("carga de tenant sin registro")
		}
		return c.Next()
	}
}

// SessionMiddleware re-verifica la sesión cuando el token o el tenant activo
// cambiaron (los dos únicos disparadores). Un fallo de verificación deja el estado
// de sesión limpio; la respuesta la decide cada ruta.
func SessionMiddleware(sessions *session.Store, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := sessions.EnsureVerified(c.Context()); err != nil {
			log.Debug().Err(err).Msg("sesión no verificada")
		}
		return c.Next()
	}
}

// GetTenantKey clave resuelta para esta navegación (después de TenantMiddleware).
func GetTenantKey(c *fiber.Ctx) string {
	v := c.Locals(LocalTenantKey)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// isTransport distingue fallo de conectividad de cualquier otro error.
func isTransport(err error) bool {
	return errors.Is(err, domain.ErrBackendUnavailable)
}
