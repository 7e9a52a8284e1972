package sales

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// Actor usuario autenticado que ejecuta el comando; se estampa como vendedor.
type Actor struct {
	UserID string
	Name   string
}

// SaleItemInput línea candidata. Sin UnitRetailPrice se usa el precio del catálogo.
// En devoluciones OriginalLineItemID identifica la línea de la venta original
// (si va vacío se busca por producto/variante).
type SaleItemInput struct {
	ProductID          string
	VariantID          string
	Quantity           int
	UnitRetailPrice    *decimal.Decimal
	OriginalLineItemID string
}

// ProcessSaleCommand transacción candidata sin ID ni fecha.
type ProcessSaleCommand struct {
	WorkspaceID    string
	Actor          Actor
	Type           string // sale (por defecto) | return
	OriginalSaleID string // obligatorio en devoluciones
	Items          []SaleItemInput
	Discount       *decimal.Decimal // reemplaza el descuento automático
	Payments       []entity.Payment
	CustomerID     string
	IdempotencyKey string
	Note           string
}

// RefundItemInput cantidad a devolver de una línea de la venta.
type RefundItemInput struct {
	LineItemID string
	Quantity   int
}

// RefundCommand reembolso total (sin Items) o parcial de una venta.
// Payments opcional: desglose con montos positivos.
type RefundCommand struct {
	WorkspaceID string
	Actor       Actor
	SaleID      string
	Items       []RefundItemInput
	Payments    []entity.Payment
	Note        string
}

// DeleteSaleCommand elimina una venta (con sus devoluciones) o una devolución.
type DeleteSaleCommand struct {
	WorkspaceID string
	Actor       Actor
	SaleID      string
}

// SaleResult transacción confirmada y advertencias no fatales.
// Replayed indica que se devolvió una venta ya confirmada con la misma clave de idempotencia.
type SaleResult struct {
	Sale     *entity.Sale
	Warnings []domain.ConsistencyWarning
	Replayed bool
}

// DeleteResult conteos de la cascada. ParentSaleID se informa al eliminar una devolución.
type DeleteResult struct {
	DeletedReturnCount     int
	DeletedAdjustmentCount int
	ParentSaleID           string
}

// SaleDetail venta con sus devoluciones y la utilidad reconciliada.
type SaleDetail struct {
	Sale     *entity.Sale
	Returns  []*entity.Sale
	Warnings []domain.ConsistencyWarning
}
