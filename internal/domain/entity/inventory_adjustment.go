package entity

import "time"

// Motivos de ajuste registrados por el ledger de stock.
const (
	AdjustmentReasonSale          = "Sale"
	AdjustmentReasonReturn        = "Return"
	AdjustmentReasonStockReceived = "Stock Received"
	AdjustmentReasonInitialStock  = "Initial Stock"
)

// InventoryAdjustment fila de auditoría de un cambio de stock. Solo se agrega, nunca se modifica.
// TransactionID referencia la venta o devolución que la originó (vacío en ajustes manuales).
type InventoryAdjustment struct {
	ID            string
	WorkspaceID   string
	ProductID     string
	VariantID     string
	Date          time.Time
	QuantityDelta int
	Reason        string
	TransactionID string
	StockAfter    int
	CreatedBy     string
}
