package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
)

// PaymentDTO pago por método (cash | card | other).
type PaymentDTO struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// SaleItemRequest línea de una venta o devolución. Sin unit_price se usa el precio del catálogo.
type SaleItemRequest struct {
	ProductID          string           `json:"product_id"`
	VariantID          string           `json:"variant_id,omitempty"`
	Quantity           int              `json:"quantity"`
	UnitPrice          *decimal.Decimal `json:"unit_price,omitempty"`
	OriginalLineItemID string           `json:"original_line_item_id,omitempty"`
}

// CreateSaleRequest body para POST /api/sales. Type: sale (por defecto) | return.
type CreateSaleRequest struct {
	Type           string            `json:"type,omitempty"`
	OriginalSaleID string            `json:"original_sale_id,omitempty"`
	Items          []SaleItemRequest `json:"items"`
	Discount       *decimal.Decimal  `json:"discount,omitempty"`
	Payments       []PaymentDTO      `json:"payments"`
	CustomerID     string            `json:"customer_id,omitempty"`
	Note           string            `json:"note,omitempty"`
}

// RefundItemRequest cantidad a devolver de una línea.
type RefundItemRequest struct {
	LineItemID string `json:"line_item_id"`
	Quantity   int    `json:"quantity"`
}

// RefundRequest body para POST /api/sales/{id}/refund. Sin items se devuelve todo lo pendiente.
type RefundRequest struct {
	Items    []RefundItemRequest `json:"items,omitempty"`
	Payments []PaymentDTO        `json:"payments,omitempty"`
	Note     string              `json:"note,omitempty"`
}

// LineItemResponse línea de una transacción.
type LineItemResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	VariantID        string          `json:"variant_id,omitempty"`
	Name             string          `json:"name"`
	SKU              string          `json:"sku"`
	UnitRetailPrice  decimal.Decimal `json:"unit_retail_price"`
	UnitCostPrice    decimal.Decimal `json:"unit_cost_price"`
	Quantity         int             `json:"quantity"`
	ReturnedQuantity int             `json:"returned_quantity,omitempty"`
	OriginalLineID   string          `json:"original_line_id,omitempty"`
}

// SaleResponse venta o devolución.
type SaleResponse struct {
	ID              string             `json:"id"`
	PublicID        string             `json:"public_id"`
	Type            string             `json:"type"`
	Status          string             `json:"status,omitempty"`
	OriginalSaleID  string             `json:"original_sale_id,omitempty"`
	Date            time.Time          `json:"date"`
	Items           []LineItemResponse `json:"items"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	Discount        decimal.Decimal    `json:"discount"`
	Tax             decimal.Decimal    `json:"tax"`
	Total           decimal.Decimal    `json:"total"`
	COGS            decimal.Decimal    `json:"cogs"`
	Profit          decimal.Decimal    `json:"profit"`
	Payments        []PaymentDTO       `json:"payments"`
	ChangeDue       decimal.Decimal    `json:"change_due"`
	SalespersonID   string             `json:"salesperson_id,omitempty"`
	SalespersonName string             `json:"salesperson_name,omitempty"`
	CustomerID      string             `json:"customer_id,omitempty"`
	Note            string             `json:"note,omitempty"`
}

// SaleResultResponse transacción confirmada con advertencias no fatales.
type SaleResultResponse struct {
	Sale     SaleResponse                `json:"sale"`
	Warnings []domain.ConsistencyWarning `json:"warnings,omitempty"`
	Replayed bool                        `json:"replayed,omitempty"`
}

// SaleDetailResponse venta con sus devoluciones.
type SaleDetailResponse struct {
	Sale     SaleResponse                `json:"sale"`
	Returns  []SaleResponse              `json:"returns,omitempty"`
	Warnings []domain.ConsistencyWarning `json:"warnings,omitempty"`
}

// SaleListResponse listado por rango de fechas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// DeleteSaleResponse conteos de la eliminación en cascada.
type DeleteSaleResponse struct {
	DeletedReturnCount     int    `json:"deleted_return_count"`
	DeletedAdjustmentCount int    `json:"deleted_adjustment_count"`
	ParentSaleID           string `json:"parent_sale_id,omitempty"`
}
