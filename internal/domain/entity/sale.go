package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción.
const (
	SaleTypeSale   = "sale"   // venta
	SaleTypeReturn = "return" // devolución (montos y cantidades negativas)
)

// Estados derivados de una venta. Solo aplican a SaleTypeSale.
const (
	SaleStatusCompleted         = "completed"
	SaleStatusPartiallyRefunded = "partially_refunded"
	SaleStatusRefunded          = "refunded"
)

// Métodos de pago.
const (
	PaymentMethodCash  = "cash"
	PaymentMethodCard  = "card"
	PaymentMethodOther = "other"
)

// LineItem representa un producto (o variante) dentro de una venta o devolución.
// Quantity es negativa solo en devoluciones; ReturnedQuantity solo se usa en ventas.
type LineItem struct {
	ID               string
	SaleID           string
	ProductID        string
	VariantID        string // vacío si el producto no tiene variantes
	Name             string
	SKU              string
	UnitRetailPrice  decimal.Decimal
	UnitCostPrice    decimal.Decimal
	Quantity         int
	ReturnedQuantity int
	OriginalSaleID   string // en líneas de devolución: ID de la venta original
	OriginalLineID   string // en líneas de devolución: línea de la venta original
}

// Remaining cantidad aún reembolsable de una línea de venta.
func (li LineItem) Remaining() int {
	return li.Quantity - li.ReturnedQuantity
}

// Payment pago aplicado a una transacción. En devoluciones el monto es negativo.
type Payment struct {
	Method string
	Amount decimal.Decimal
}

// Sale cabecera de una transacción (venta o devolución).
// Inmutable una vez creada, salvo Status y los contadores ReturnedQuantity de sus líneas.
type Sale struct {
	ID              string
	PublicID        string // número legible para el ticket (ej: "V-20240101-0001")
	WorkspaceID     string
	Date            time.Time
	Type            string
	OriginalSaleID  string // solo en devoluciones
	Status          string // solo en ventas
	Items           []LineItem
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	COGS            decimal.Decimal
	Profit          decimal.Decimal
	Payments        []Payment
	ChangeDue       decimal.Decimal
	SalespersonID   string
	SalespersonName string
	CustomerID      string
	IdempotencyKey  string
	Note            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsReturn indica si la transacción es una devolución.
func (s *Sale) IsReturn() bool {
	return s.Type == SaleTypeReturn
}

// TotalQuantity suma las cantidades originales de las líneas.
func (s *Sale) TotalQuantity() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// TotalReturned suma los contadores de devolución de las líneas.
func (s *Sale) TotalReturned() int {
	n := 0
	for _, it := range s.Items {
		n += it.ReturnedQuantity
	}
	return n
}

// Clone copia profunda (las líneas y pagos no se comparten).
func (s *Sale) Clone() *Sale {
	if s == nil {
		return nil
	}
	c := *s
	c.Items = append([]LineItem(nil), s.Items...)
	c.Payments = append([]Payment(nil), s.Payments...)
	return &c
}
