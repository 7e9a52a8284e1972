// Package sales contiene la lógica pura del ledger de ventas: totales, reembolsos
// proporcionales, derivación de estado y reconciliación de utilidad.
// No depende de persistencia; los casos de uso en application/sales la orquestan.
package sales

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/money"
)

// Totals montos derivados de una transacción.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	COGS     decimal.Decimal
	Profit   decimal.Decimal
}

// Subtotal Σ(precio × cantidad) con el signo de la cantidad.
func Subtotal(items []entity.LineItem, p money.Precision) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(money.MulQty(it.UnitRetailPrice, it.Quantity))
	}
	return p.Round(sum)
}

// COGS Σ(costo × |cantidad|). Siempre positivo; el llamador lo niega en devoluciones.
func COGS(items []entity.LineItem, p money.Precision) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		q := it.Quantity
		if q < 0 {
			q = -q
		}
		sum = sum.Add(money.MulQty(it.UnitCostPrice, q))
	}
	return p.Round(sum)
}

// Profit total − impuesto − costo.
func Profit(total, tax, cogs decimal.Decimal) decimal.Decimal {
	return total.Sub(tax).Sub(cogs)
}

// ComputeSaleTotals calcula los totales de una venta nueva con la configuración vigente.
// discount explícito reemplaza al descuento automático; debe estar entre 0 y el subtotal.
func ComputeSaleTotals(items []entity.LineItem, discount *decimal.Decimal, settings entity.Settings) (Totals, error) {
	p := money.PrecisionFor(settings.IntegerCurrency)
	var t Totals
	t.Subtotal = Subtotal(items, p)

	switch {
	case discount != nil:
		d := p.Round(*discount)
		if d.IsNegative() {
			return Totals{}, domain.NewValidationError("discount", "el descuento no puede ser negativo")
		}
		if d.GreaterThan(t.Subtotal) {
			return Totals{}, domain.NewValidationError("discount", "el descuento (%s) supera el subtotal (%s)", d, t.Subtotal)
		}
		t.Discount = d
	case settings.DiscountRate.IsPositive() && t.Subtotal.GreaterThanOrEqual(settings.DiscountThreshold):
		t.Discount = p.MulRate(t.Subtotal, settings.DiscountRate)
	default:
		t.Discount = decimal.Zero
	}

	taxable := t.Subtotal.Sub(t.Discount)
	t.Tax = p.MulRate(taxable, settings.TaxRate)
	t.Total = taxable.Add(t.Tax)
	t.COGS = COGS(items, p)
	t.Profit = Profit(t.Total, t.Tax, t.COGS)
	return t, nil
}

// ApplyTotals copia los totales a la cabecera de la venta.
func ApplyTotals(sale *entity.Sale, t Totals) {
	sale.Subtotal = t.Subtotal
	sale.Discount = t.Discount
	sale.Tax = t.Tax
	sale.Total = t.Total
	sale.COGS = t.COGS
	sale.Profit = t.Profit
}

// ValidatePayments verifica que los pagos cubran el total y retorna el vuelto.
// Sin vuelto habilitado la suma debe ser exactamente el total; con vuelto se compara
// con tolerancia de redondeo y se permite exceder el total (nunca en devoluciones).
func ValidatePayments(payments []entity.Payment, total decimal.Decimal, changeDue bool, p money.Precision) (decimal.Decimal, error) {
	if len(payments) == 0 {
		if p.IsZero(total) {
			return decimal.Zero, nil
		}
		return decimal.Zero, domain.NewValidationError("payments", "se requiere al menos un pago")
	}
	paid := decimal.Zero
	for i, pm := range payments {
		switch pm.Method {
		case entity.PaymentMethodCash, entity.PaymentMethodCard, entity.PaymentMethodOther:
		default:
			return decimal.Zero, domain.NewValidationError("payments", "método de pago %q inválido en posición %d", pm.Method, i)
		}
		if total.IsNegative() != pm.Amount.IsNegative() && !pm.Amount.IsZero() {
			return decimal.Zero, domain.NewValidationError("payments", "el signo del pago %d no coincide con el total", i)
		}
		paid = paid.Add(pm.Amount)
	}
	if !changeDue {
		if paid.Equal(total) {
			return decimal.Zero, nil
		}
	} else {
		if p.Equal(paid, total) {
			return decimal.Zero, nil
		}
		if !total.IsNegative() && paid.GreaterThan(total) {
			return p.Round(paid.Sub(total)), nil
		}
	}
	return decimal.Zero, domain.NewValidationError("payments", "la suma de pagos (%s) no coincide con el total (%s)", paid, total)
}
