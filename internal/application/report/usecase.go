// Package report expone las vistas agregadas por rango de fechas.
// Lee las transacciones confirmadas y delega el cálculo en domain/report.
package report

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/money"
	domainreport "github.com/jhoicas/pos-ledger/internal/domain/report"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// SettingsProvider configuración vigente del workspace (solo se usa la precisión).
type SettingsProvider interface {
	Settings(ctx context.Context, workspaceID string) (entity.Settings, error)
}

// ReportUseCase reportes de ventas, clientes y rotación.
type ReportUseCase struct {
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	settings     SettingsProvider
	logger       zerolog.Logger
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	settings SettingsProvider,
	logger zerolog.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		settings:     settings,
		logger:       logger.With().Str("component", "report").Logger(),
	}
}

// ProductPerformance unidades, ingreso neto, costo y utilidad por producto en el rango.
func (uc *ReportUseCase) ProductPerformance(ctx context.Context, workspaceID string, from, to *time.Time) (*dto.ReportResponse[dto.ProductPerformanceDTO], error) {
	txs, p, r, err := uc.load(ctx, workspaceID, from, to)
	if err != nil {
		return nil, err
	}
	rows := domainreport.ProductPerformanceReport(txs, r, p)
	out := &dto.ReportResponse[dto.ProductPerformanceDTO]{From: from, To: to, Rows: make([]dto.ProductPerformanceDTO, 0, len(rows))}
	for _, row := range rows {
		out.Rows = append(out.Rows, dto.ProductPerformanceDTO{
			ProductID: row.ProductID,
			VariantID: row.VariantID,
			Name:      row.Name,
			SKU:       row.SKU,
			UnitsSold: row.UnitsSold,
			Revenue:   row.Revenue,
			COGS:      row.COGS,
			Profit:    row.Profit,
		})
	}
	out.Summary, out.Warnings = summary(txs, r, p)
	uc.logWarnings(workspaceID, "products", out.Warnings)
	return out, nil
}

// CustomerSummary pedidos, gasto, utilidad y última visita por cliente.
func (uc *ReportUseCase) CustomerSummary(ctx context.Context, workspaceID string, from, to *time.Time) (*dto.ReportResponse[dto.CustomerSummaryDTO], error) {
	txs, p, r, err := uc.load(ctx, workspaceID, from, to)
	if err != nil {
		return nil, err
	}
	customers, err := uc.customerRepo.ListByWorkspace(ctx, workspaceID, 0, 0)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}

	rows := domainreport.CustomerSummaryReport(txs, r, p)
	out := &dto.ReportResponse[dto.CustomerSummaryDTO]{From: from, To: to, Rows: make([]dto.CustomerSummaryDTO, 0, len(rows))}
	for _, row := range rows {
		out.Rows = append(out.Rows, dto.CustomerSummaryDTO{
			CustomerID: row.CustomerID,
			Name:       names[row.CustomerID],
			Orders:     row.Orders,
			TotalSpent: row.TotalSpent,
			Profit:     row.Profit,
			LastVisit:  row.LastVisit,
		})
	}
	out.Summary, out.Warnings = summary(txs, r, p)
	uc.logWarnings(workspaceID, "customers", out.Warnings)
	return out, nil
}

// SellThrough tasa de venta por producto con el stock actual.
func (uc *ReportUseCase) SellThrough(ctx context.Context, workspaceID string, from, to *time.Time) (*dto.ReportResponse[dto.SellThroughDTO], error) {
	txs, _, r, err := uc.load(ctx, workspaceID, from, to)
	if err != nil {
		return nil, err
	}
	products, err := uc.productRepo.ListByWorkspace(ctx, workspaceID, 0, 0)
	if err != nil {
		return nil, err
	}
	rows := domainreport.SellThroughReport(txs, products, r)
	out := &dto.ReportResponse[dto.SellThroughDTO]{From: from, To: to, Rows: make([]dto.SellThroughDTO, 0, len(rows))}
	for _, row := range rows {
		out.Rows = append(out.Rows, dto.SellThroughDTO{
			ProductID:    row.ProductID,
			Name:         row.Name,
			UnitsSold:    row.UnitsSold,
			CurrentStock: row.CurrentStock,
			Rate:         row.Rate,
		})
	}
	return out, nil
}

// load lee todas las transacciones del rango (sin paginar).
func (uc *ReportUseCase) load(ctx context.Context, workspaceID string, from, to *time.Time) ([]*entity.Sale, money.Precision, domainreport.DateRange, error) {
	var r domainreport.DateRange
	if from != nil {
		r.From = *from
	}
	if to != nil {
		r.To = *to
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return nil, 0, r, domain.NewValidationError("to", "el fin del rango es anterior al inicio")
	}
	s, err := uc.settings.Settings(ctx, workspaceID)
	if err != nil {
		return nil, 0, r, err
	}
	txs, err := uc.saleRepo.ListByWorkspace(ctx, workspaceID, from, to, 0, 0)
	if err != nil {
		return nil, 0, r, err
	}
	return txs, money.PrecisionFor(s.IntegerCurrency), r, nil
}

func summary(txs []*entity.Sale, r domainreport.DateRange, p money.Precision) (*dto.ReportSummaryDTO, []domain.ConsistencyWarning) {
	s := domainreport.Summarize(txs, r, p)
	return &dto.ReportSummaryDTO{
		Transactions: s.Transactions,
		Returns:      s.Returns,
		Revenue:      s.Revenue,
		Discount:     s.Discount,
		Tax:          s.Tax,
		COGS:         s.COGS,
		Profit:       s.Profit,
	}, s.Warnings
}

func (uc *ReportUseCase) logWarnings(workspaceID, report string, warnings []domain.ConsistencyWarning) {
	if len(warnings) == 0 {
		return
	}
	uc.logger.Warn().
		Str("workspace_id", workspaceID).
		Str("report", report).
		Int("warnings", len(warnings)).
		Msg("utilidad recalculada en transacciones almacenadas")
}
