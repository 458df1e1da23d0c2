package entity

import "time"

// Roles válidos, ordenados por privilegio: tenantUser < tenantManager < tenantAdmin < superAdmin.
// "admin" es el rol legacy: en los guards cuenta como administrador genérico pero no
// como tenantAdmin ni superAdmin.
const (
	RoleTenantUser    = "tenantUser"
	RoleTenantManager = "tenantManager"
	RoleLegacyAdmin   = "admin"
	RoleTenantAdmin   = "tenantAdmin"
	RoleSuperAdmin    = "superAdmin"
)

// Nombre de usuario reservado: el login de superadmin omite el scoping por tenant.
const ReservedSuperAdminUsername = "superadmin"

// RoleRank orden total de privilegio para comparar roles con un solo predicado
// (roleRank(role) >= roleRank(required)) en lugar de cadenas de != repetidas.
// Un rol desconocido vale 0 y no pasa ningún guard.
func RoleRank(role string) int {
	switch role {
	case RoleTenantUser:
		return 1
	case RoleTenantManager:
		return 2
	case RoleLegacyAdmin:
		return 3
	case RoleTenantAdmin:
		return 4
	case RoleSuperAdmin:
		return 5
	default:
		return 0
	}
}

// Principal es la identidad autenticada verificada contra el backend.
// TenantID es vacío únicamente para superAdmin.
type Principal struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	Role           string    `json:"role"`
	TenantID       string    `json:"tenantId,omitempty"`
	IsActive       bool      `json:"isActive"`
	ImpersonatedBy string    `json:"impersonatedBy,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}

// IsSuperAdmin true si el rol es superAdmin.
func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.Role == RoleSuperAdmin
}

// IsTenantAdmin true si el rol alcanza tenantAdmin.
func (p *Principal) IsTenantAdmin() bool {
	return p != nil && RoleRank(p.Role) >= RoleRank(RoleTenantAdmin)
}

// IsTenantManager true si el rol alcanza tenantManager.
func (p *Principal) IsTenantManager() bool {
	return p != nil && RoleRank(p.Role) >= RoleRank(RoleTenantManager)
}

// BelongsTo true si el principal pertenece al tenant dado. superAdmin pertenece a todos.
func (p *Principal) BelongsTo(tenantID string) bool {
	if p == nil {
		return false
	}
	if p.IsSuperAdmin() {
		return true
	}
	return p.TenantID == tenantID
}
