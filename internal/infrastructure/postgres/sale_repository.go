package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, public_id, workspace_id, date, type, original_sale_id, status,
	subtotal, discount, tax, total, cogs, profit, change_due,
	salesperson_id, salesperson_name, customer_id, COALESCE(idempotency_key, ''), note, created_at, updated_at`

// SaleRepo ventas y devoluciones en sales, sale_items y sale_payments (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la cabecera, las líneas y los pagos. Una clave de idempotencia repetida
// en el mismo workspace retorna domain.ErrDuplicate.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, public_id, workspace_id, date, type, original_sale_id, status,
			subtotal, discount, tax, total, cogs, profit, change_due,
			salesperson_id, salesperson_name, customer_id, idempotency_key, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		sale.ID, sale.PublicID, sale.WorkspaceID, sale.Date, sale.Type, sale.OriginalSaleID, sale.Status,
		sale.Subtotal, sale.Discount, sale.Tax, sale.Total, sale.COGS, sale.Profit, sale.ChangeDue,
		sale.SalespersonID, sale.SalespersonName, sale.CustomerID, nullableText(sale.IdempotencyKey), sale.Note,
		sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	for i := range sale.Items {
		it := &sale.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.SaleID = sale.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO sale_items (id, sale_id, position, product_id, variant_id, name, sku,
				unit_retail_price, unit_cost_price, quantity, returned_quantity, original_sale_id, original_line_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			it.ID, sale.ID, i, it.ProductID, it.VariantID, it.Name, it.SKU,
			it.UnitRetailPrice, it.UnitCostPrice, it.Quantity, it.ReturnedQuantity, it.OriginalSaleID, it.OriginalLineID,
		)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	for i, pm := range sale.Payments {
		_, err := r.q.Exec(ctx,
			`INSERT INTO sale_payments (sale_id, position, method, amount) VALUES ($1, $2, $3, $4)`,
			sale.ID, i, pm.Method, pm.Amount,
		)
		if err != nil {
			return fmt.Errorf("insert sale payment: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con líneas y pagos. (nil, nil) si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetByIdempotencyKey busca por el índice único (workspace_id, idempotency_key).
func (r *SaleRepo) GetByIdempotencyKey(ctx context.Context, workspaceID, key string) (*entity.Sale, error) {
	if key == "" {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE workspace_id = $1 AND idempotency_key = $2`, workspaceID, key)
}

// GetForUpdate bloquea la cabecera; las líneas solo se modifican a través de ella.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.attachChildren(ctx, []*entity.Sale{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateRefundState persiste Status y los ReturnedQuantity de las líneas.
func (r *SaleRepo) UpdateRefundState(ctx context.Context, sale *entity.Sale) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE sales SET status = $2, updated_at = $3 WHERE id = $1`,
		sale.ID, sale.Status, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("venta", sale.ID)
	}
	for _, it := range sale.Items {
		_, err := r.q.Exec(ctx,
			`UPDATE sale_items SET returned_quantity = $3 WHERE sale_id = $1 AND id = $2`,
			sale.ID, it.ID, it.ReturnedQuantity,
		)
		if err != nil {
			return fmt.Errorf("update returned quantity: %w", err)
		}
	}
	return nil
}

// ListReturnsByOriginal devoluciones de una venta, en orden cronológico.
func (r *SaleRepo) ListReturnsByOriginal(ctx context.Context, originalSaleID string) ([]*entity.Sale, error) {
	return r.list(ctx, `
		SELECT `+saleColumns+` FROM sales
		WHERE type = 'return' AND original_sale_id = $1
		ORDER BY date, created_at`, originalSaleID)
}

// ListByWorkspace ventas y devoluciones del workspace, más recientes primero. limit <= 0 = sin límite.
func (r *SaleRepo) ListByWorkspace(ctx context.Context, workspaceID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	return r.list(ctx, `
		SELECT `+saleColumns+` FROM sales
		WHERE workspace_id = $1
			AND ($2::timestamptz IS NULL OR date >= $2)
			AND ($3::timestamptz IS NULL OR date <= $3)
		ORDER BY date DESC, created_at DESC
		LIMIT $4 OFFSET $5`,
		workspaceID, from, to, limitArg(limit), offsetArg(offset))
}

// Delete elimina la venta; líneas y pagos caen por ON DELETE CASCADE.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("venta", id)
	}
	return nil
}

func (r *SaleRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if err := r.attachChildren(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachChildren carga líneas y pagos de varias ventas con una consulta por tabla.
func (r *SaleRepo) attachChildren(ctx context.Context, sales []*entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Sale, len(sales))
	ids := make([]string, 0, len(sales))
	for _, s := range sales {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, variant_id, name, sku, unit_retail_price, unit_cost_price,
			quantity, returned_quantity, original_sale_id, original_line_id
		FROM sale_items WHERE sale_id = ANY($1)
		ORDER BY sale_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list sale items: %w", err)
	}
	for rows.Next() {
		var it entity.LineItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.VariantID, &it.Name, &it.SKU,
			&it.UnitRetailPrice, &it.UnitCostPrice, &it.Quantity, &it.ReturnedQuantity,
			&it.OriginalSaleID, &it.OriginalLineID); err != nil {
			rows.Close()
			return fmt.Errorf("scan sale item: %w", err)
		}
		if s, ok := byID[it.SaleID]; ok {
			s.Items = append(s.Items, it)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list sale items: %w", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT sale_id, method, amount FROM sale_payments
		WHERE sale_id = ANY($1) ORDER BY sale_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list sale payments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var saleID string
		var pm entity.Payment
		if err := rows.Scan(&saleID, &pm.Method, &pm.Amount); err != nil {
			return fmt.Errorf("scan sale payment: %w", err)
		}
		if s, ok := byID[saleID]; ok {
			s.Payments = append(s.Payments, pm)
		}
	}
	return rows.Err()
}

func scanSale(row scanner) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(&s.ID, &s.PublicID, &s.WorkspaceID, &s.Date, &s.Type, &s.OriginalSaleID, &s.Status,
		&s.Subtotal, &s.Discount, &s.Tax, &s.Total, &s.COGS, &s.Profit, &s.ChangeDue,
		&s.SalespersonID, &s.SalespersonName, &s.CustomerID, &s.IdempotencyKey, &s.Note, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
