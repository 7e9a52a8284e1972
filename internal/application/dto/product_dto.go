package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// VariantRequest variante al crear un producto.
type VariantRequest struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name" validate:"required"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	InitialStock int             `json:"initial_stock"`
}

// CreateProductRequest entrada para crear un producto. InitialStock se registra como
// ajuste "Initial Stock"; con variantes se usa el de cada variante.
type CreateProductRequest struct {
	SKU          string           `json:"sku" validate:"required,min=1,max=100"`
	Name         string           `json:"name" validate:"required,min=1,max=200"`
	Price        decimal.Decimal  `json:"price"`
	Cost         decimal.Decimal  `json:"cost"`
	InitialStock int              `json:"initial_stock"`
	Variants     []VariantRequest `json:"variants,omitempty"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Cost ni Stock).
type UpdateProductRequest struct {
	Name  *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Price *decimal.Decimal `json:"price"`
}

// VariantResponse salida de una variante.
type VariantResponse struct {
	ID    string          `json:"id"`
	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Cost  decimal.Decimal `json:"cost"`
	Stock int             `json:"stock"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string            `json:"id"`
	WorkspaceID string            `json:"workspace_id"`
	SKU         string            `json:"sku"`
	Name        string            `json:"name"`
	Price       decimal.Decimal   `json:"price"`
	Cost        decimal.Decimal   `json:"cost"`
	Stock       int               `json:"stock"`
	Variants    []VariantResponse `json:"variants,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
