package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
)

// AdjustStockRequest body para POST /api/inventory/adjust.
type AdjustStockRequest struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason"`
}

// ReceiveStockRequest body para POST /api/inventory/receive. UnitCost recalcula el costo promedio.
type ReceiveStockRequest struct {
	ProductID string           `json:"product_id"`
	VariantID string           `json:"variant_id,omitempty"`
	Quantity  int              `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
}

// AdjustmentResponse fila de auditoría de stock.
type AdjustmentResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	VariantID     string    `json:"variant_id,omitempty"`
	Date          time.Time `json:"date"`
	QuantityDelta int       `json:"quantity_delta"`
	Reason        string    `json:"reason"`
	TransactionID string    `json:"transaction_id,omitempty"`
	StockAfter    int       `json:"stock_after"`
	CreatedBy     string    `json:"created_by,omitempty"`
}

// AdjustmentResultResponse ajuste aplicado y advertencias (stock negativo).
type AdjustmentResultResponse struct {
	Adjustment AdjustmentResponse          `json:"adjustment"`
	Warnings   []domain.ConsistencyWarning `json:"warnings,omitempty"`
}

// StockHistoryResponse historial de ajustes de un producto.
type StockHistoryResponse struct {
	Items []AdjustmentResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
