package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-portal/internal/application/dto"
	"github.com/jhoicas/Inventario-portal/internal/application/session"
	"github.com/jhoicas/Inventario-portal/internal/application/tenant"
	"github.com/jhoicas/Inventario-portal/internal/infrastructure/branding"
)

// PagesHandler sirve las páginas lógicas como documentos JSON: el shell de cada
// pantalla (título, branding, mensaje) y las páginas terminales de error. El
// renderizado visual queda fuera del portal.
type PagesHandler struct {
	tenants  *tenant.Store
	sessions *session.Store
	brand    *branding.Context
}

// NewPagesHandler construye el handler de páginas.
func NewPagesHandler(tenants *tenant.Store, sessions *session.Store, brand *branding.Context) *PagesHandler {
	return &PagesHandler{tenants: tenants, sessions: sessions, brand: brand}
}

// page documento base de una página lógica.
func (h *PagesHandler) page(c *fiber.Ctx, name, message string) error {
	doc := fiber.Map{
		"page":     name,
		"branding": h.brand.Snapshot(),
	}
	if message != "" {
		doc["message"] = message
	}
	if t := h.tenants.Current(); t != nil {
		info := dto.PublicTenant(t, "")
		doc["tenant"] = info
	}
	if p := h.sessions.Principal(); p != nil {
		doc["user"] = p
	}
	return c.JSON(doc)
}

// Public página pública del tenant (visitante anónimo en tenant activo).
func (h *PagesHandler) Public(c *fiber.Ctx) error {
	return h.page(c, "public", "")
}

// Login formulario de acceso; incluye el último error de sesión visible.
func (h *PagesHandler) Login(c *fiber.Ctx) error {
	return h.page(c, "login", h.sessions.ErrMessage())
}

// RegisterTenant landing de alta de tenant en el dominio principal.
func (h *PagesHandler) RegisterTenant(c *fiber.Ctx) error {
	return h.page(c, "register-tenant", "")
}

// SelectTenant autenticado sin afiliación resoluble.
func (h *PagesHandler) SelectTenant(c *fiber.Ctx) error {
	return h.page(c, "select-tenant", "tu usuario no tiene un tenant asociado a este origen")
}

// Suspended página terminal de tenant suspendido o cancelado.
func (h *PagesHandler) Suspended(c *fiber.Ctx) error {
	return h.page(c, "suspended", "este tenant está suspendido, contacta con soporte")
}

// UnauthorizedTenant el principal pertenece a otro tenant.
func (h *PagesHandler) UnauthorizedTenant(c *fiber.Ctx) error {
	return h.page(c, "unauthorized-tenant", "tu usuario no tiene acceso a este tenant")
}

// TenantNotFound la clave resuelta no corresponde a ningún tenant.
func (h *PagesHandler) TenantNotFound(c *fiber.Ctx) error {
	return h.page(c, "tenant-not-found", "el tenant solicitado no existe")
}

// TenantError error genérico de resolución (incluye la advertencia de caché).
func (h *PagesHandler) TenantError(c *fiber.Ctx) error {
	msg := "no se pudo cargar la información del tenant"
	if serr := h.tenants.Err(); serr != nil {
		msg = serr.Message
	}
	return h.page(c, "tenant-error", msg)
}

// Dashboard shell del dashboard del tenant.
func (h *PagesHandler) Dashboard(c *fiber.Ctx) error {
	return h.page(c, "dashboard", "")
}

// Products shell del catálogo.
func (h *PagesHandler) Products(c *fiber.Ctx) error {
	return h.page(c, "products", "")
}

// Transactions shell de ventas y compras.
func (h *PagesHandler) Transactions(c *fiber.Ctx) error {
	return h.page(c, "transactions", "")
}

// UsersAdmin shell de gestión de usuarios del tenant.
func (h *PagesHandler) UsersAdmin(c *fiber.Ctx) error {
	return h.page(c, "users-admin", "")
}

// TenantSettings shell de configuración del tenant.
func (h *PagesHandler) TenantSettings(c *fiber.Ctx) error {
	return h.page(c, "tenant-settings", "")
}

// AdminTenants shell de gestión global de tenants (superAdmin).
func (h *PagesHandler) AdminTenants(c *fiber.Ctx) error {
	return h.page(c, "admin-tenants", "")
}

// Profile shell del perfil del usuario.
func (h *PagesHandler) Profile(c *fiber.Ctx) error {
	return h.page(c, "profile", "")
}

// NotFound ruta inexistente.
func (h *PagesHandler) NotFound(c *fiber.Ctx) error {
	c.Status(fiber.StatusNotFound)
	return h.page(c, "not-found", "la página solicitada no existe")
}
