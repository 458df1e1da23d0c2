package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-portal/internal/application/dto"
	"github.com/jhoicas/Inventario-portal/internal/application/session"
	"github.com/jhoicas/Inventario-portal/internal/application/tenant"
	"github.com/jhoicas/Inventario-portal/internal/infrastructure/branding"
)

// TenantHandler expone el tenant resuelto, el branding y el cambio explícito.
type TenantHandler struct {
	tenants  *tenant.Store
	sessions *session.Store
	brand    *branding.Context
}

// NewTenantHandler construye el handler de tenant.
func NewTenantHandler(tenants *tenant.Store, sessions *session.Store, brand *branding.Context) *TenantHandler {
	return &TenantHandler{tenants: tenants, sessions: sessions, brand: brand}
}

// Info godoc
// @Summary      Tenant resuelto para esta navegación (settings solo para su admin)
// @Tags         tenants
// @Produce      json
// @Success      200  {object}  dto.TenantInfoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tenant [get]
func (h *TenantHandler) Info(c *fiber.Ctx) error {
	t := h.tenants.Current()
	if t == nil {
		msg := "no hay tenant resuelto para este origen"
		if serr := h.tenants.Err(); serr != nil {
			msg = serr.Message
		}
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "TENANT_NOT_FOUND", Message: msg})
	}

	warning := ""
	if serr := h.tenants.Err(); serr != nil && !serr.Fatal {
		warning = serr.Message
	}
	out := dto.PublicTenant(t, warning)

	// Settings (límites, feature flags) solo para administradores del propio tenant.
	if p := h.sessions.Principal(); p != nil && p.BelongsTo(t.ID) && p.IsTenantAdmin() {
		out.Settings = &t.Settings
	}
	return c.JSON(out)
}

// Branding godoc
// @Summary      Contexto de presentación del tenant actual
// @Tags         tenants
// @Produce      json
// @Success      200  {object}  branding.Snapshot
// @Router       /api/branding [get]
func (h *TenantHandler) Branding(c *fiber.Ctx) error {
	return c.JSON(h.brand.Snapshot())
}

// BrandingCSS godoc
// @Summary      Variables CSS del tema del tenant
// @Tags         tenants
// @Produce      plain
// @Success      200
// @Router       /branding.css [get]
func (h *TenantHandler) BrandingCSS(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/css; charset=utf-8")
	return c.SendString(h.brand.CSS())
}

// Switch godoc
// @Summary      Cambio explícito de tenant (desarrollo y recuperación)
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SwitchTenantRequest  true  "clave del tenant"
// @Success      200   {object}  dto.TenantInfoResponse
// @Router       /api/tenant/switch [post]
func (h *TenantHandler) Switch(c *fiber.Ctx) error {
	var in dto.SwitchTenantRequest
	if err := c.BodyParser(&in); err != nil || in.Key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "key es requerida"})
	}
	if err := h.tenants.SwitchTenant(c.Context(), in.Key); err != nil {
		if h.tenants.Current() == nil {
			return respondError(c, err)
		}
		// fallback de caché: seguimos con advertencia
	}
	// El cambio de tenant es un disparador de re-verificación de la sesión.
	_ = h.sessions.EnsureVerified(c.Context())
	return h.Info(c)
}
