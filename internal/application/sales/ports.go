package sales

import (
	"context"
	"time"

	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// LedgerTxRunner ejecuta una función dentro de una transacción que incluye ventas, stock y auditoría.
// Todo lo escrito en fn se confirma junto o no se confirma.
type LedgerTxRunner interface {
	RunLedger(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		stockRepo repository.StockRepository,
		adjRepo repository.InventoryAdjustmentRepository,
	) error) error
}

// StockLedger interfaz para integrar ventas con el ledger de stock.
// ApplyDeltaInTx usa los repositorios del caller (misma transacción).
type StockLedger interface {
	ApplyDeltaInTx(
		ctx context.Context,
		adjRepo repository.InventoryAdjustmentRepository,
		stockRepo repository.StockRepository,
		in inventory.DeltaInput,
	) (*entity.InventoryAdjustment, *domain.ConsistencyWarning, error)
}

// SettingsProvider configuración de ventas vigente para un workspace.
type SettingsProvider interface {
	Settings(ctx context.Context, workspaceID string) (entity.Settings, error)
}

// IdempotencyStore registra claves de idempotencia de ProcessSale.
// Reserve es atómico (SETNX): retorna false si la clave ya existía.
// Lookup retorna el ID de la venta confirmada, o "" si la clave sigue en curso.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Complete(ctx context.Context, key, saleID string, ttl time.Duration) error
	Lookup(ctx context.Context, key string) (saleID string, found bool, err error)
	Release(ctx context.Context, key string) error
}

// StaticSettings proveedor con la misma configuración para todos los workspaces (leída de config).
type StaticSettings struct {
	Value entity.Settings
}

func (s StaticSettings) Settings(context.Context, string) (entity.Settings, error) {
	return s.Value, nil
}
