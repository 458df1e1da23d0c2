package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-portal/internal/application/access"
	"github.com/jhoicas/Inventario-portal/internal/application/entry"
	"github.com/jhoicas/Inventario-portal/internal/application/session"
)

// EntryHandler decide la ruta de aterrizaje en la entrada del portal.
type EntryHandler struct {
	decider  *entry.Decider
	sessions *session.Store
}

// NewEntryHandler construye el handler de entrada.
func NewEntryHandler(decider *entry.Decider, sessions *session.Store) *EntryHandler {
	return &EntryHandler{decider: decider, sessions: sessions}
}

// Enter godoc
// @Summary      Entrada del portal: redirige al destino único según tenant y sesión
// @Tags         entry
// @Produce      json
// @Success      302
// @Router       / [get]
func (h *EntryHandler) Enter(c *fiber.Ctx) error {
	out := h.decider.Decide(c.Context(), GetTenantKey(c))
	if out.Pending {
		c.Set("Retry-After", "1")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "loading"})
	}
	return c.Redirect(string(out.Target), fiber.StatusFound)
}

// AuthRedirect godoc
// @Summary      Entrada con token de impersonación (?impersonationToken=)
// @Tags         entry
// @Success      302
// @Router       /auth-redirect [get]
func (h *EntryHandler) AuthRedirect(c *fiber.Ctx) error {
	token := c.Query("impersonationToken")
	if token == "" {
		return c.Redirect(string(access.RouteLogin), fiber.StatusFound)
	}
	if err := h.sessions.AdoptImpersonationToken(c.Context(), token); err != nil {
		return c.Redirect(string(access.RouteLogin), fiber.StatusFound)
	}
	return c.Redirect(string(access.RouteProducts), fiber.StatusFound)
}
