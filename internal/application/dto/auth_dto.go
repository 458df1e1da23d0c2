package dto

import "github.com/jhoicas/Inventario-portal/internal/domain/entity"

// LoginRequest credenciales de inicio de sesión. El tenant no viaja en el body:
// se deriva del origen de la petición (y se omite para el superadmin reservado).
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse sesión establecida y destino de aterrizaje según el rol.
type LoginResponse struct {
	User       *entity.Principal `json:"user"`
	RedirectTo string            `json:"redirectTo"`
}

// SessionResponse estado observable de la sesión para las pantallas.
type SessionResponse struct {
	Authenticated   bool              `json:"authenticated"`
	User            *entity.Principal `json:"user,omitempty"`
	IsSuperAdmin    bool              `json:"isSuperAdmin"`
	IsTenantAdmin   bool              `json:"isTenantAdmin"`
	IsTenantManager bool              `json:"isTenantManager"`
	IsImpersonating bool              `json:"isImpersonating"`
	Error           string            `json:"error,omitempty"`
}

// RegisterUserRequest alta de usuario dentro del tenant actual.
type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RegisterTenantRequest alta de tenant desde el dominio principal.
type RegisterTenantRequest struct {
	Subdomain     string `json:"subdomain"`
	Name          string `json:"name"`
	AdminUsername string `json:"adminUsername"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword"`
}
