package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
)

// ProductPerformanceDTO fila del reporte por producto.
type ProductPerformanceDTO struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	UnitsSold int             `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
	COGS      decimal.Decimal `json:"cogs"`
	Profit    decimal.Decimal `json:"profit"`
}

// CustomerSummaryDTO fila del reporte por cliente.
type CustomerSummaryDTO struct {
	CustomerID string          `json:"customer_id"`
	Name       string          `json:"name,omitempty"`
	Orders     int             `json:"orders"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	Profit     decimal.Decimal `json:"profit"`
	LastVisit  time.Time       `json:"last_visit"`
}

// SellThroughDTO fila del reporte de rotación.
type SellThroughDTO struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	UnitsSold    int             `json:"units_sold"`
	CurrentStock int             `json:"current_stock"`
	Rate         decimal.Decimal `json:"rate"`
}

// ReportSummaryDTO totales del rango.
type ReportSummaryDTO struct {
	Transactions int             `json:"transactions"`
	Returns      int             `json:"returns"`
	Revenue      decimal.Decimal `json:"revenue"`
	Discount     decimal.Decimal `json:"discount"`
	Tax          decimal.Decimal `json:"tax"`
	COGS         decimal.Decimal `json:"cogs"`
	Profit       decimal.Decimal `json:"profit"`
}

// ReportResponse respuesta común de los reportes.
type ReportResponse[T any] struct {
	From     *time.Time                  `json:"from,omitempty"`
	To       *time.Time                  `json:"to,omitempty"`
	Rows     []T                         `json:"rows"`
	Summary  *ReportSummaryDTO           `json:"summary,omitempty"`
	Warnings []domain.ConsistencyWarning `json:"warnings,omitempty"`
}

// Instancias con nombre para la documentación Swagger.
type (
	ProductPerformanceReport = ReportResponse[ProductPerformanceDTO]
	CustomerSummaryReport    = ReportResponse[CustomerSummaryDTO]
	SellThroughReport        = ReportResponse[SellThroughDTO]
)
