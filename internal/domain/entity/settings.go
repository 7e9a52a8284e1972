package entity

import "github.com/shopspring/decimal"

// Settings parámetros de venta vigentes. Se leen al procesar cada venta
// y nunca se aplican retroactivamente a ventas existentes.
type Settings struct {
	TaxRate           decimal.Decimal // 0.08 = 8%
	DiscountRate      decimal.Decimal // descuento automático (0.10 = 10%); 0 = desactivado
	DiscountThreshold decimal.Decimal // subtotal mínimo para aplicar DiscountRate
	IntegerCurrency   bool            // moneda sin decimales
	ChangeDueEnabled  bool            // permite sobrepago (vuelto)
}
