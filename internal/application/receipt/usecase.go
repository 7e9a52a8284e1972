// Package receipt genera el comprobante PDF de una venta o devolución.
package receipt

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// Data todo lo que el generador necesita para el comprobante.
type Data struct {
	StoreName        string
	Sale             *entity.Sale
	Customer         *entity.Customer // nil si la venta no tiene cliente
	OriginalPublicID string           // número de la venta original (solo devoluciones)
	IntegerCurrency  bool
}

// Generator puerto de salida para renderizar el comprobante.
type Generator interface {
	GenerateReceiptPDF(ctx context.Context, data Data) ([]byte, error)
}

// SettingsProvider configuración vigente (solo la precisión de moneda).
type SettingsProvider interface {
	Settings(ctx context.Context, workspaceID string) (entity.Settings, error)
}

// UseCase arma los datos del comprobante y delega el render.
type UseCase struct {
	saleRepo     repository.SaleRepository
	customerRepo repository.CustomerRepository
	settings     SettingsProvider
	generator    Generator
	storeName    string
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	saleRepo repository.SaleRepository,
	customerRepo repository.CustomerRepository,
	settings SettingsProvider,
	generator Generator,
	storeName string,
) *UseCase {
	return &UseCase{
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
		settings:     settings,
		generator:    generator,
		storeName:    storeName,
	}
}

// Download retorna los bytes del PDF y el nombre de archivo sugerido.
// NotFoundError si la transacción no existe o es de otro workspace.
func (uc *UseCase) Download(ctx context.Context, workspaceID, saleID string) ([]byte, string, error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener venta: %w", err)
	}
	if sale == nil || sale.WorkspaceID != workspaceID {
		return nil, "", domain.NotFound("venta", saleID)
	}
	settings, err := uc.settings.Settings(ctx, workspaceID)
	if err != nil {
		return nil, "", err
	}

	data := Data{StoreName: uc.storeName, Sale: sale, IntegerCurrency: settings.IntegerCurrency}
	if sale.CustomerID != "" {
		// Un cliente borrado no impide imprimir el comprobante
		if c, cErr := uc.customerRepo.GetByID(ctx, sale.CustomerID); cErr == nil {
			data.Customer = c
		}
	}
	if sale.IsReturn() && sale.OriginalSaleID != "" {
		if orig, oErr := uc.saleRepo.GetByID(ctx, sale.OriginalSaleID); oErr == nil && orig != nil {
			data.OriginalPublicID = orig.PublicID
		}
	}

	pdfBytes, err := uc.generator.GenerateReceiptPDF(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("comprobante_%s.pdf", sale.PublicID), nil
}
