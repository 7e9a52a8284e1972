package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas y devoluciones.
// GetByID retorna (nil, nil) si no existe.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetByIdempotencyKey venta confirmada con esa clave en el workspace; (nil, nil) si no existe.
	GetByIdempotencyKey(ctx context.Context, workspaceID, key string) (*entity.Sale, error)
	// GetForUpdate bloquea la venta (y sus líneas) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	// UpdateRefundState persiste Status y los ReturnedQuantity de las líneas. Es la única mutación permitida.
	UpdateRefundState(ctx context.Context, sale *entity.Sale) error
	ListReturnsByOriginal(ctx context.Context, originalSaleID string) ([]*entity.Sale, error)
	ListByWorkspace(ctx context.Context, workspaceID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error)
	Delete(ctx context.Context, id string) error
}
