package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de un workspace.
// Stock lo escribe exclusivamente el ledger de stock; cuando hay variantes el stock vive en cada Variant.
type Product struct {
	ID          string
	WorkspaceID string
	SKU         string // código único por workspace
	Name        string
	Price       decimal.Decimal // precio de venta
	Cost        decimal.Decimal // costo unitario
	Stock       int
	Variants    []Variant
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Variant variante de un producto (talla, color...).
type Variant struct {
	ID        string
	ProductID string
	SKU       string
	Name      string
	Price     decimal.Decimal
	Cost      decimal.Decimal
	Stock     int
}

// FindVariant busca una variante por ID.
func (p *Product) FindVariant(variantID string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// CurrentStock stock total del producto (suma de variantes si las tiene).
func (p *Product) CurrentStock() int {
	if len(p.Variants) == 0 {
		return p.Stock
	}
	n := 0
	for _, v := range p.Variants {
		n += v.Stock
	}
	return n
}

// Clone copia profunda del producto.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.Variants = append([]Variant(nil), p.Variants...)
	return &c
}

// StockLevel stock actual de un producto o variante.
type StockLevel struct {
	ProductID string
	VariantID string
	Quantity  int
	UpdatedAt time.Time
}
