package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo stock guardado en products.stock o product_variants.stock (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto o de una de sus variantes.
func (r *StockRepo) Get(ctx context.Context, productID, variantID string) (*entity.StockLevel, error) {
	return r.get(ctx, productID, variantID, false)
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, variantID string) (*entity.StockLevel, error) {
	return r.get(ctx, productID, variantID, true)
}

func (r *StockRepo) get(ctx context.Context, productID, variantID string, lock bool) (*entity.StockLevel, error) {
	lvl := &entity.StockLevel{ProductID: productID, VariantID: variantID}
	var err error
	if variantID == "" {
		query := `SELECT stock, updated_at FROM products WHERE id = $1`
		if lock {
			query += ` FOR UPDATE`
		}
		err = r.q.QueryRow(ctx, query, productID).Scan(&lvl.Quantity, &lvl.UpdatedAt)
	} else {
		query := `
			SELECT v.stock, p.updated_at
			FROM product_variants v JOIN products p ON p.id = v.product_id
			WHERE v.product_id = $1 AND v.id = $2`
		if lock {
			query += ` FOR UPDATE OF v`
		}
		err = r.q.QueryRow(ctx, query, productID, variantID).Scan(&lvl.Quantity, &lvl.UpdatedAt)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if variantID != "" {
				return nil, domain.NotFound("variante", variantID)
			}
			return nil, domain.NotFound("producto", productID)
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return lvl, nil
}

// Upsert escribe la cantidad de stock. El producto (o variante) debe existir.
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.StockLevel) error {
	if stock.VariantID == "" {
		cmd, err := r.q.Exec(ctx,
			`UPDATE products SET stock = $2, updated_at = $3 WHERE id = $1`,
			stock.ProductID, stock.Quantity, stock.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert stock: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return domain.NotFound("producto", stock.ProductID)
		}
		return nil
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE product_variants SET stock = $3 WHERE product_id = $1 AND id = $2`,
		stock.ProductID, stock.VariantID, stock.Quantity,
	)
	if err != nil {
		return fmt.Errorf("upsert variant stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("variante", stock.VariantID)
	}
	return nil
}
