// Package money contiene las primitivas de aritmética de punto fijo usadas por el ledger.
// Todo monto se representa con decimal.Decimal; nunca con float64.
package money

import "github.com/shopspring/decimal"

// Precision número de decimales de la unidad mínima de la moneda.
type Precision int32

const (
	// Fractional moneda con centavos (2 decimales).
	Fractional Precision = 2
	// Integer moneda sin decimales (modo "moneda entera").
	Integer Precision = 0
)

// PrecisionFor devuelve la precisión según el modo de moneda entera.
func PrecisionFor(integerCurrency bool) Precision {
	if integerCurrency {
		return Integer
	}
	return Fractional
}

// Epsilon tolerancia de comparación para la precisión: media unidad mínima.
func (p Precision) Epsilon() decimal.Decimal {
	return decimal.New(5, -int32(p)-1)
}

// Round redondea a la unidad mínima, mitades alejándose de cero (simétrico para montos negados).
func (p Precision) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(int32(p))
}

// Equal compara dos montos dentro de la tolerancia de la precisión.
func (p Precision) Equal(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(p.Epsilon())
}

// IsZero indica si el monto es cero dentro de la tolerancia.
func (p Precision) IsZero(d decimal.Decimal) bool {
	return d.Abs().LessThan(p.Epsilon())
}

// Sum suma una lista de montos.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// MulQty multiplica un precio unitario por una cantidad entera con signo.
func MulQty(unit decimal.Decimal, qty int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}

// MulRate multiplica un monto por una tasa (0.08 = 8%) y redondea.
func (p Precision) MulRate(amount, rate decimal.Decimal) decimal.Decimal {
	return p.Round(amount.Mul(rate))
}

// Proportion calcula amount × num / den redondeado; 0 si den <= 0.
// Multiplica antes de dividir para no perder precisión en la razón.
func (p Precision) Proportion(amount, num, den decimal.Decimal) decimal.Decimal {
	if !den.IsPositive() {
		return decimal.Zero
	}
	return p.Round(amount.Mul(num).Div(den))
}
