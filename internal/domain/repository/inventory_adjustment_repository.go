package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// InventoryAdjustmentRepository define el puerto para las filas de auditoría de stock.
// Las filas solo se agregan; únicamente la cascada de borrado las elimina por TransactionID.
type InventoryAdjustmentRepository interface {
	Create(ctx context.Context, adj *entity.InventoryAdjustment) error
	ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryAdjustment, error)
	DeleteByTransactions(ctx context.Context, transactionIDs []string) (int, error)
}
