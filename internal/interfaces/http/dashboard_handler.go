package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-portal/internal/application/dto"
	"github.com/jhoicas/Inventario-portal/internal/application/session"
	"github.com/jhoicas/Inventario-portal/internal/application/tenant"
	"github.com/jhoicas/Inventario-portal/internal/domain/entity"
	"github.com/jhoicas/Inventario-portal/internal/infrastructure/backend"
)

// umbral de stock bajo si el tenant no configura uno.
const defaultLowStockThreshold = 5

// DashboardHandler arma el resumen financiero del dashboard del tenant a partir
// de los datos del backend.
type DashboardHandler struct {
	api      *backend.Client
	tenants  *tenant.Store
	sessions *session.Store
}

// NewDashboardHandler construye el handler del dashboard.
func NewDashboardHandler(api *backend.Client, tenants *tenant.Store, sessions *session.Store) *DashboardHandler {
	return &DashboardHandler{api: api, tenants: tenants, sessions: sessions}
}

// Summary godoc
// @Summary      Resumen financiero: ventas, compras, balance y stock bajo
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	token := h.sessions.Token()
	key := GetTenantKey(c)

	sales, err := h.api.ListSales(c.Context(), token, key)
	if err != nil {
		return respondError(c, err)
	}
	purchases, err := h.api.ListPurchases(c.Context(), token, key)
	if err != nil {
		return respondError(c, err)
	}
	products, err := h.api.ListProducts(c.Context(), token, key)
	if err != nil {
		return respondError(c, err)
	}

	threshold := defaultLowStockThreshold
	currency := "$"
	if t := h.tenants.Current(); t != nil {
		if t.Settings.LowStockThreshold > 0 {
			threshold = t.Settings.LowStockThreshold
		}
		if t.Customization.CurrencySymbol != "" {
			currency = t.Customization.CurrencySymbol
		}
	}

	lowStock := make([]entity.Product, 0)
	for _, p := range products {
		if p.IsLowStock(threshold) {
			lowStock = append(lowStock, p)
		}
	}

	salesTotal := entity.SumTotals(sales)
	purchasesTotal := entity.SumTotals(purchases)

	return c.JSON(dto.DashboardSummaryResponse{
		SalesTotal:     salesTotal,
		PurchasesTotal: purchasesTotal,
		Balance:        salesTotal.Sub(purchasesTotal),
		ProductCount:   len(products),
		LowStockCount:  len(lowStock),
		LowStock:       lowStock,
		CurrencySymbol: currency,
	})
}
