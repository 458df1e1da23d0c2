package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-portal/internal/application/access"
	"github.com/jhoicas/Inventario-portal/internal/application/dto"
	"github.com/jhoicas/Inventario-portal/internal/application/session"
	"github.com/jhoicas/Inventario-portal/internal/application/tenant"
	"github.com/jhoicas/Inventario-portal/internal/infrastructure/backend"
)

// AuthHandler maneja login, logout, sesión, impersonación y registro.
type AuthHandler struct {
	sessions *session.Store
	tenants  *tenant.Store
	api      *backend.Client
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(sessions *session.Store, tenants *tenant.Store, api *backend.Client) *AuthHandler {
	return &AuthHandler{sessions: sessions, tenants: tenants, api: api}
}

// Login godoc
// @Summary      Iniciar sesión; el tenant se deriva del origen de la petición
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "username, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Username == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "username y password son requeridos"})
	}

	if err := h.sessions.Login(c.Context(), in.Username, in.Password, GetTenantKey(c)); err != nil {
		return respondError(c, err)
	}

	user := h.sessions.Principal()
	return c.JSON(dto.LoginResponse{
		User:       user,
		RedirectTo: string(access.RoleLanding(user.Role)),
	})
}

// Logout godoc
// @Summary      Cerrar sesión: limpia token, impersonación y cachés
// @Tags         auth
// @Success      200  {object}  dto.MessageResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.sessions.Logout()
	return c.JSON(dto.MessageResponse{Message: "sesión cerrada"})
}

// Session godoc
// @Summary      Estado observable de la sesión
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/auth/session [get]
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	return c.JSON(dto.SessionResponse{
		Authenticated:   h.sessions.IsAuthenticated(),
		User:            h.sessions.Principal(),
		IsSuperAdmin:    h.sessions.IsSuperAdmin(),
		IsTenantAdmin:   h.sessions.IsTenantAdmin(),
		IsTenantManager: h.sessions.IsTenantManager(),
		IsImpersonating: h.sessions.IsImpersonating(),
		Error:           h.sessions.ErrMessage(),
	})
}

// Users godoc
// @Summary      Roster de usuarios del tenant (caché de un minuto; ?refresh=true la ignora)
// @Tags         auth
// @Produce      json
// @Success      200  {array}  entity.Principal
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/auth/users [get]
func (h *AuthHandler) Users(c *fiber.Ctx) error {
	users, err := h.sessions.Users(c.Context(), c.QueryBool("refresh"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// RegisterUser godoc
// @Summary      Alta de usuario en el tenant actual (invalida el roster cacheado)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterUserRequest  true  "datos del usuario"
// @Success      201   {object}  entity.Principal
// @Router       /api/auth/register [post]
func (h *AuthHandler) RegisterUser(c *fiber.Ctx) error {
	var in dto.RegisterUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Username == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "username y password son requeridos"})
	}

	tenantID := ""
	if t := h.tenants.Current(); t != nil {
		tenantID = t.ID
	}
	payload := map[string]any{
		"username": in.Username,
		"email":    in.Email,
		"password": in.Password,
		"role":     in.Role,
	}
	user, err := h.api.RegisterUser(c.Context(), h.sessions.Token(), tenantID, payload)
	if err != nil {
		return respondError(c, err)
	}
	h.sessions.InvalidateUsers()
	return c.Status(fiber.StatusCreated).JSON(user)
}

// RegisterTenant godoc
// @Summary      Alta de tenant desde el dominio principal
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterTenantRequest  true  "datos del tenant y su admin"
// @Success      201   {object}  entity.Tenant
// @Router       /api/tenants/register [post]
func (h *AuthHandler) RegisterTenant(c *fiber.Ctx) error {
	var in dto.RegisterTenantRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Subdomain == "" || in.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "subdomain y name son requeridos"})
	}
	t, err := h.api.RegisterTenant(c.Context(), map[string]any{
		"subdomain":     in.Subdomain,
		"name":          in.Name,
		"adminUsername": in.AdminUsername,
		"adminEmail":    in.AdminEmail,
		"adminPassword": in.AdminPassword,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// Impersonate godoc
// @Summary      Iniciar impersonación de un usuario (solo superAdmin)
// @Tags         admin
// @Produce      json
// @Param        userId  path  string  true  "id del usuario a impersonar"
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/admin/impersonate/{userId} [post]
func (h *AuthHandler) Impersonate(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "userId requerido"})
	}
	if err := h.sessions.BeginImpersonation(c.Context(), userID); err != nil {
		return respondError(c, err)
	}
	return h.Session(c)
}

// EndImpersonation godoc
// @Summary      Restaurar la identidad original (o forzar re-login si no hay slot)
// @Tags         admin
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/auth/end-impersonation [post]
func (h *AuthHandler) EndImpersonation(c *fiber.Ctx) error {
	if err := h.sessions.EndImpersonation(c.Context()); err != nil {
		return respondError(c, err)
	}
	return h.Session(c)
}
