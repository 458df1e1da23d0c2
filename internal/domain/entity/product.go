package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo tal como lo expone el backend.
// El portal no lo persiste; solo lo reenvía y lo usa para el resumen del dashboard.
type Product struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"tenantId"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Cost      decimal.Decimal `json:"cost"`
	Stock     int             `json:"stock"`
	ImageID   string          `json:"imageId,omitempty"` // referencia opaca, se sirve desde el backend
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// IsLowStock compara contra el umbral configurado en el tenant.
func (p *Product) IsLowStock(threshold int) bool {
	return p.Stock <= threshold
}
