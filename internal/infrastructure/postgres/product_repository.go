package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, workspace_id, sku, name, price, cost, stock, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste el producto y sus variantes con stock 0 (el stock inicial lo escribe el ledger).
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (id, workspace_id, sku, name, price, cost, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8)`,
		product.ID, product.WorkspaceID, product.SKU, product.Name, product.Price, product.Cost,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	for i := range product.Variants {
		v := &product.Variants[i]
		if v.ID == "" {
			v.ID = uuid.New().String()
		}
		v.ProductID = product.ID
		if err := r.upsertVariant(ctx, v, i); err != nil {
			return err
		}
	}
	return nil
}

func (r *ProductRepo) upsertVariant(ctx context.Context, v *entity.Variant, position int) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO product_variants (id, product_id, position, sku, name, price, cost, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0)
		ON CONFLICT (id) DO UPDATE SET
			position = EXCLUDED.position, sku = EXCLUDED.sku, name = EXCLUDED.name,
			price = EXCLUDED.price, cost = EXCLUDED.cost`,
		v.ID, v.ProductID, position, v.SKU, v.Name, v.Price, v.Cost,
	)
	if err != nil {
		return fmt.Errorf("upsert variant: %w", err)
	}
	return nil
}

// GetByID obtiene un producto con sus variantes. (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByWorkspaceAndSKU obtiene un producto por workspace y SKU.
func (r *ProductRepo) GetByWorkspaceAndSKU(ctx context.Context, workspaceID, sku string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE workspace_id = $1 AND sku = $2`, workspaceID, sku)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if err := r.attachVariants(ctx, []*entity.Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// Update actualiza datos de catálogo y costo. Nunca escribe stock (solo el ledger lo hace).
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET name = $2, price = $3, cost = $4, updated_at = $5
		WHERE id = $1`,
		product.ID, product.Name, product.Price, product.Cost, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("producto", product.ID)
	}
	for i := range product.Variants {
		v := &product.Variants[i]
		v.ProductID = product.ID
		if v.ID == "" {
			v.ID = uuid.New().String()
		}
		if err := r.upsertVariant(ctx, v, i); err != nil {
			return err
		}
	}
	return nil
}

// ListByWorkspace lista productos por nombre. limit <= 0 = sin límite.
func (r *ProductRepo) ListByWorkspace(ctx context.Context, workspaceID string, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+productColumns+` FROM products WHERE workspace_id = $1
		ORDER BY name, id LIMIT $2 OFFSET $3`,
		workspaceID, limitArg(limit), offsetArg(offset),
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if err := r.attachVariants(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachVariants carga las variantes de varios productos en una sola consulta.
func (r *ProductRepo) attachVariants(ctx context.Context, products []*entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Product, len(products))
	ids := make([]string, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, sku, name, price, cost, stock
		FROM product_variants WHERE product_id = ANY($1)
		ORDER BY product_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v entity.Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &v.Price, &v.Cost, &v.Stock); err != nil {
			return fmt.Errorf("scan variant: %w", err)
		}
		if p, ok := byID[v.ProductID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.WorkspaceID, &p.SKU, &p.Name, &p.Price, &p.Cost, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
