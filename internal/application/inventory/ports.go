package inventory

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza atomicidad entre el cambio de stock y su fila de auditoría.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		adjRepo repository.InventoryAdjustmentRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
}
