package repository

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// StockRepository define el puerto para leer/escribir el stock de un producto o variante.
// Solo el ledger de stock llama a Upsert; siempre dentro de una transacción.
type StockRepository interface {
	Get(ctx context.Context, productID, variantID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID, variantID string) (*entity.StockLevel, error)
	Upsert(ctx context.Context, stock *entity.StockLevel) error
}
