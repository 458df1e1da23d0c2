package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-portal/internal/application/access"
	"github.com/jhoicas/Inventario-portal/internal/application/dto"
	"github.com/jhoicas/Inventario-portal/internal/application/session"
	"github.com/jhoicas/Inventario-portal/internal/application/tenant"
	"github.com/jhoicas/Inventario-portal/pkg/logger"
)

// Guard devuelve un middleware que evalúa la política de acceso de la ruta.
// Allow continúa; Redirect responde 302 al destino que la política eligió
// (nunca una ruta que el principal tampoco pueda alcanzar); Pending responde
// 503 con Retry-After mientras tenant o sesión siguen resolviéndose.
func Guard(req access.Requirement, tenants *tenant.Store, sessions *session.Store, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := access.Evaluate(
			sessions.Principal(),
			tenants.Current(),
			req,
			access.LoadingFlags{
				TenantLoading:  tenants.Loading(),
				SessionLoading: sessions.Loading(),
			},
		)

		switch decision.Verdict {
		case access.Allow:
			return c.Next()
		case access.Pending:
			c.Set("Retry-After", "1")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "loading",
			})
		default:
			log.Info().
				Str("path", c.Path()).
				Str("target", string(decision.Target)).
				Str("reason", decision.Reason).
				Msg("acceso denegado")
			// Las rutas de datos responden JSON; las de navegación redirigen al
			// destino que la política eligió.
			if strings.HasPrefix(c.Path(), "/api/") {
				status := fiber.StatusForbidden
				if decision.Target == access.RouteLogin {
					status = fiber.StatusUnauthorized
				}
				return c.Status(status).JSON(dto.ErrorResponse{
					Code:    "ACCESS_DENIED",
					Message: decision.Reason,
				})
			}
			return c.Redirect(string(decision.Target), fiber.StatusFound)
		}
	}
}
