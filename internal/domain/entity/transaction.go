package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción que maneja el portal.
const (
	TransactionSale     = "sale"
	TransactionPurchase = "purchase"
)

// TransactionItem línea de una venta o compra.
type TransactionItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Transaction venta o compra tal como la expone el backend.
type Transaction struct {
	ID        string            `json:"id"`
	TenantID  string            `json:"tenantId"`
	Type      string            `json:"type"`
	Items     []TransactionItem `json:"items"`
	Total     decimal.Decimal   `json:"total"`
	CreatedBy string            `json:"createdBy"`
	CreatedAt time.Time         `json:"createdAt"`
}

// SumTotals suma los totales de un conjunto de transacciones.
func SumTotals(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Total)
	}
	return total
}
