package dto

import (
	"github.com/jhoicas/Inventario-portal/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// TenantInfoResponse vista pública del tenant resuelto. Warning lleva la
// advertencia no fatal de datos en caché cuando el backend no respondió.
type TenantInfoResponse struct {
	ID            string                 `json:"id"`
	Subdomain     string                 `json:"subdomain"`
	Name          string                 `json:"name"`
	Status        string                 `json:"status"`
	Plan          string                 `json:"plan"`
	Customization entity.Customization   `json:"customization"`
	Settings      *entity.TenantSettings `json:"settings,omitempty"` // solo para administradores del tenant
	Warning       string                 `json:"warning,omitempty"`
}

// PublicTenant proyección pública sin settings.
func PublicTenant(t *entity.Tenant, warning string) TenantInfoResponse {
	return TenantInfoResponse{
		ID:            t.ID,
		Subdomain:     t.Subdomain,
		Name:          t.Name,
		Status:        t.Status,
		Plan:          t.Plan,
		Customization: t.Customization,
		Warning:       warning,
	}
}

// SwitchTenantRequest cambio explícito de tenant (desarrollo/recuperación).
type SwitchTenantRequest struct {
	Key string `json:"key"`
}

// DashboardSummaryResponse resumen financiero del dashboard del tenant.
type DashboardSummaryResponse struct {
	SalesTotal     decimal.Decimal  `json:"salesTotal"`
	PurchasesTotal decimal.Decimal  `json:"purchasesTotal"`
	Balance        decimal.Decimal  `json:"balance"`
	ProductCount   int              `json:"productCount"`
	LowStockCount  int              `json:"lowStockCount"`
	LowStock       []entity.Product `json:"lowStock"`
	CurrencySymbol string           `json:"currencySymbol"`
}
