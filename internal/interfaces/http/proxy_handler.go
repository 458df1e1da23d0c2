package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-portal/internal/application/dto"
	"github.com/jhoicas/Inventario-portal/internal/application/session"
	"github.com/jhoicas/Inventario-portal/internal/domain"
	"github.com/jhoicas/Inventario-portal/internal/infrastructure/backend"
	"github.com/jhoicas/Inventario-portal/pkg/logger"
)

// ProxyHandler reenvía las llamadas de datos de las pantallas (productos, ventas,
// compras) al backend con el bearer y el tenant adjuntos. Un 401 del backend
// desmonta la sesión completa: un token inválido afecta a todas las rutas
// protegidas, no solo a la pantalla que lo detectó.
type ProxyHandler struct {
	api      *backend.Client
	sessions *session.Store
	log      *logger.Logger
}

// NewProxyHandler construye el handler de reenvío.
func NewProxyHandler(api *backend.Client, sessions *session.Store, log *logger.Logger) *ProxyHandler {
	return &ProxyHandler{api: api, sessions: sessions, log: log}
}

// Forward godoc
// @Summary      Reenvío transparente de llamadas CRUD al backend
// @Tags         proxy
// @Router       /api/products [get]
func (h *ProxyHandler) Forward(c *fiber.Ctx) error {
	query, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		query = nil
	}
	// La clave de tenant de esta navegación viaja como X-Tenant-ID; el parámetro
	// local ?tenant= no se reenvía.
	query.Del("tenant")

	res, err := h.api.Proxy(c.Context(), c.Method(), c.Path(), query, c.Body(), h.sessions.Token(), GetTenantKey(c))
	if err != nil {
		// Fallo de transporte: error de conectividad, nunca un redirect de autorización.
		h.log.Error().Err(err).Str("path", c.Path()).Msg("backend inaccesible")
		return respondError(c, err)
	}

	if res.Status == fiber.StatusUnauthorized {
		// Token expirado o revocado: limpiar la sesión para todo el portal.
		h.log.Warn().Str("path", c.Path()).Msg("401 del backend, desmontando sesión")
		h.sessions.Logout()
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Code:    "SESSION_EXPIRED",
			Message: domain.ErrSessionExpired.Error(),
		})
	}

	if res.ContentType != "" {
		c.Set("Content-Type", res.ContentType)
	}
	return c.Status(res.Status).Send(res.Body)
}
