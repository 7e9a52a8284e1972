package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var (
	_ repository.SaleRepository                = (*SaleRepo)(nil)
	_ repository.ProductRepository             = (*ProductRepo)(nil)
	_ repository.CustomerRepository            = (*CustomerRepo)(nil)
	_ repository.StockRepository               = (*StockRepo)(nil)
	_ repository.InventoryAdjustmentRepository = (*AdjustmentRepo)(nil)
)

// ─── Ventas ──────────────────────────────────────────────────────────────────

// SaleRepo ventas y devoluciones en memoria.
type SaleRepo struct{ b binding }

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	return r.b.write(func(d *dataset) error {
		if _, ok := d.sales[sale.ID]; ok {
			return domain.ErrDuplicate
		}
		if sale.IdempotencyKey != "" {
			for _, s := range d.sales {
				if s.WorkspaceID == sale.WorkspaceID && s.IdempotencyKey == sale.IdempotencyKey {
					return domain.ErrDuplicate
				}
			}
		}
		d.sales[sale.ID] = sale.Clone()
		return nil
	})
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	r.b.read(func(d *dataset) {
		out = d.sales[id].Clone()
	})
	return out, nil
}

func (r *SaleRepo) GetByIdempotencyKey(_ context.Context, workspaceID, key string) (*entity.Sale, error) {
	var out *entity.Sale
	if key == "" {
		return nil, nil
	}
	r.b.read(func(d *dataset) {
		for _, s := range d.sales {
			if s.WorkspaceID == workspaceID && s.IdempotencyKey == key {
				out = s.Clone()
				return
			}
		}
	})
	return out, nil
}

// GetForUpdate en memoria el lock es el de la transacción completa.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) UpdateRefundState(_ context.Context, sale *entity.Sale) error {
	return r.b.write(func(d *dataset) error {
		cur, ok := d.sales[sale.ID]
		if !ok {
			return domain.NotFound("venta", sale.ID)
		}
		returned := make(map[string]int, len(sale.Items))
		for _, it := range sale.Items {
			returned[it.ID] = it.ReturnedQuantity
		}
		for i := range cur.Items {
			cur.Items[i].ReturnedQuantity = returned[cur.Items[i].ID]
		}
		cur.Status = sale.Status
		cur.UpdatedAt = sale.UpdatedAt
		return nil
	})
}

func (r *SaleRepo) ListReturnsByOriginal(_ context.Context, originalSaleID string) ([]*entity.Sale, error) {
	var out []*entity.Sale
	r.b.read(func(d *dataset) {
		for _, s := range d.sales {
			if s.Type == entity.SaleTypeReturn && s.OriginalSaleID == originalSaleID {
				out = append(out, s.Clone())
			}
		}
	})
	sortByDate(out, false)
	return out, nil
}

func (r *SaleRepo) ListByWorkspace(_ context.Context, workspaceID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	r.b.read(func(d *dataset) {
		for _, s := range d.sales {
			if s.WorkspaceID != workspaceID || !inRange(s.Date, from, to) {
				continue
			}
			out = append(out, s.Clone())
		}
	})
	sortByDate(out, true)
	return paginate(out, limit, offset), nil
}

func (r *SaleRepo) Delete(_ context.Context, id string) error {
	return r.b.write(func(d *dataset) error {
		if _, ok := d.sales[id]; !ok {
			return domain.NotFound("venta", id)
		}
		delete(d.sales, id)
		return nil
	})
}

// ─── Productos ───────────────────────────────────────────────────────────────

// ProductRepo catálogo en memoria. Create y Update no tocan el stock existente.
type ProductRepo struct{ b binding }

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.b.write(func(d *dataset) error {
		for _, p := range d.products {
			if p.WorkspaceID == product.WorkspaceID && p.SKU == product.SKU {
				return domain.ErrDuplicate
			}
		}
		if product.ID == "" {
			product.ID = uuid.New().String()
		}
		c := product.Clone()
		c.Stock = 0
		for i := range c.Variants {
			if c.Variants[i].ID == "" {
				c.Variants[i].ID = uuid.New().String()
				product.Variants[i].ID = c.Variants[i].ID
			}
			c.Variants[i].ProductID = c.ID
			c.Variants[i].Stock = 0
		}
		d.products[c.ID] = c
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.b.read(func(d *dataset) {
		out = d.products[id].Clone()
	})
	return out, nil
}

func (r *ProductRepo) GetByWorkspaceAndSKU(_ context.Context, workspaceID, sku string) (*entity.Product, error) {
	var out *entity.Product
	r.b.read(func(d *dataset) {
		for _, p := range d.products {
			if p.WorkspaceID == workspaceID && p.SKU == sku {
				out = p.Clone()
				return
			}
		}
	})
	return out, nil
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.b.write(func(d *dataset) error {
		cur, ok := d.products[product.ID]
		if !ok {
			return domain.NotFound("producto", product.ID)
		}
		next := product.Clone()
		next.Stock = cur.Stock
		for i := range next.Variants {
			next.Variants[i].Stock = 0
			if v, ok := cur.FindVariant(next.Variants[i].ID); ok {
				next.Variants[i].Stock = v.Stock
			}
		}
		d.products[product.ID] = next
		return nil
	})
}

func (r *ProductRepo) ListByWorkspace(_ context.Context, workspaceID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	r.b.read(func(d *dataset) {
		for _, p := range d.products {
			if p.WorkspaceID == workspaceID {
				out = append(out, p.Clone())
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), nil
}

// ─── Clientes ────────────────────────────────────────────────────────────────

// CustomerRepo clientes en memoria.
type CustomerRepo struct{ b binding }

func (r *CustomerRepo) Create(_ context.Context, customer *entity.Customer) error {
	return r.b.write(func(d *dataset) error {
		if customer.ID == "" {
			customer.ID = uuid.New().String()
		}
		c := *customer
		d.customers[c.ID] = &c
		return nil
	})
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	r.b.read(func(d *dataset) {
		if c, ok := d.customers[id]; ok {
			cp := *c
			out = &cp
		}
	})
	return out, nil
}

func (r *CustomerRepo) ListByWorkspace(_ context.Context, workspaceID string, limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	r.b.read(func(d *dataset) {
		for _, c := range d.customers {
			if c.WorkspaceID == workspaceID {
				cp := *c
				out = append(out, &cp)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), nil
}

// ─── Stock ───────────────────────────────────────────────────────────────────

// StockRepo stock guardado en el producto o en la variante.
type StockRepo struct{ b binding }

func (r *StockRepo) Get(_ context.Context, productID, variantID string) (*entity.StockLevel, error) {
	var (
		out *entity.StockLevel
		err error
	)
	r.b.read(func(d *dataset) {
		out, err = stockOf(d, productID, variantID)
	})
	return out, err
}

// GetForUpdate en memoria el lock es el de la transacción completa.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, variantID string) (*entity.StockLevel, error) {
	return r.Get(ctx, productID, variantID)
}

func (r *StockRepo) Upsert(_ context.Context, stock *entity.StockLevel) error {
	return r.b.write(func(d *dataset) error {
		p, ok := d.products[stock.ProductID]
		if !ok {
			return domain.NotFound("producto", stock.ProductID)
		}
		if stock.VariantID == "" {
			p.Stock = stock.Quantity
			p.UpdatedAt = stock.UpdatedAt
			return nil
		}
		v, ok := p.FindVariant(stock.VariantID)
		if !ok {
			return domain.NotFound("variante", stock.VariantID)
		}
		v.Stock = stock.Quantity
		return nil
	})
}

func stockOf(d *dataset, productID, variantID string) (*entity.StockLevel, error) {
	p, ok := d.products[productID]
	if !ok {
		return nil, domain.NotFound("producto", productID)
	}
	lvl := &entity.StockLevel{ProductID: productID, VariantID: variantID, UpdatedAt: p.UpdatedAt}
	if variantID == "" {
		lvl.Quantity = p.Stock
		return lvl, nil
	}
	v, ok := p.FindVariant(variantID)
	if !ok {
		return nil, domain.NotFound("variante", variantID)
	}
	lvl.Quantity = v.Stock
	return lvl, nil
}

// ─── Ajustes de inventario ───────────────────────────────────────────────────

// AdjustmentRepo filas de auditoría en orden de inserción.
type AdjustmentRepo struct{ b binding }

func (r *AdjustmentRepo) Create(_ context.Context, adj *entity.InventoryAdjustment) error {
	return r.b.write(func(d *dataset) error {
		if adj.ID == "" {
			adj.ID = uuid.New().String()
		}
		cp := *adj
		d.adjustments = append(d.adjustments, &cp)
		return nil
	})
}

func (r *AdjustmentRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryAdjustment, error) {
	var out []*entity.InventoryAdjustment
	r.b.read(func(d *dataset) {
		for i := len(d.adjustments) - 1; i >= 0; i-- {
			a := d.adjustments[i]
			if a.ProductID == productID && inRange(a.Date, from, to) {
				cp := *a
				out = append(out, &cp)
			}
		}
	})
	return paginate(out, limit, offset), nil
}

func (r *AdjustmentRepo) DeleteByTransactions(_ context.Context, transactionIDs []string) (int, error) {
	ids := make(map[string]struct{}, len(transactionIDs))
	for _, id := range transactionIDs {
		if id != "" {
			ids[id] = struct{}{}
		}
	}
	deleted := 0
	err := r.b.write(func(d *dataset) error {
		kept := d.adjustments[:0:0]
		for _, a := range d.adjustments {
			if _, ok := ids[a.TransactionID]; ok && a.TransactionID != "" {
				deleted++
				continue
			}
			kept = append(kept, a)
		}
		d.adjustments = kept
		return nil
	})
	return deleted, err
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func sortByDate(sales []*entity.Sale, desc bool) {
	sort.SliceStable(sales, func(i, j int) bool {
		if desc {
			return sales[i].Date.After(sales[j].Date)
		}
		return sales[i].Date.Before(sales[j].Date)
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
