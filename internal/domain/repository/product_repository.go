package repository

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product y sus variantes.
// Create/Update no escriben el stock: eso corresponde al StockRepository.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByWorkspaceAndSKU(ctx context.Context, workspaceID, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	ListByWorkspace(ctx context.Context, workspaceID string, limit, offset int) ([]*entity.Product, error)
}
