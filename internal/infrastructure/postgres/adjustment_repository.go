package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.InventoryAdjustmentRepository = (*AdjustmentRepo)(nil)

// AdjustmentRepo filas de auditoría de stock (usable con pool o tx). seq conserva el orden de inserción.
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

// Create agrega una fila de auditoría.
func (r *AdjustmentRepo) Create(ctx context.Context, adj *entity.InventoryAdjustment) error {
	if adj.ID == "" {
		adj.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_adjustments
			(id, workspace_id, product_id, variant_id, date, quantity_delta, reason, transaction_id, stock_after, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		adj.ID, adj.WorkspaceID, adj.ProductID, adj.VariantID, adj.Date, adj.QuantityDelta,
		adj.Reason, adj.TransactionID, adj.StockAfter, adj.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert inventory adjustment: %w", err)
	}
	return nil
}

// ListByProduct filas de un producto, más recientes primero, con rango de fechas opcional.
func (r *AdjustmentRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryAdjustment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, workspace_id, product_id, variant_id, date, quantity_delta, reason, transaction_id, stock_after, created_by
		FROM inventory_adjustments
		WHERE product_id = $1
			AND ($2::timestamptz IS NULL OR date >= $2)
			AND ($3::timestamptz IS NULL OR date <= $3)
		ORDER BY seq DESC
		LIMIT $4 OFFSET $5`,
		productID, from, to, limitArg(limit), offsetArg(offset),
	)
	if err != nil {
		return nil, fmt.Errorf("list inventory adjustments: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryAdjustment
	for rows.Next() {
		var a entity.InventoryAdjustment
		if err := rows.Scan(&a.ID, &a.WorkspaceID, &a.ProductID, &a.VariantID, &a.Date, &a.QuantityDelta,
			&a.Reason, &a.TransactionID, &a.StockAfter, &a.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan inventory adjustment: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// DeleteByTransactions elimina las filas de las transacciones indicadas. Los ajustes manuales
// (sin transaction_id) nunca se borran.
func (r *AdjustmentRepo) DeleteByTransactions(ctx context.Context, transactionIDs []string) (int, error) {
	ids := make([]string, 0, len(transactionIDs))
	for _, id := range transactionIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	cmd, err := r.q.Exec(ctx,
		`DELETE FROM inventory_adjustments WHERE transaction_id <> '' AND transaction_id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete inventory adjustments: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}
