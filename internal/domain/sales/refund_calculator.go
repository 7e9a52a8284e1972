package sales

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/money"
)

// RefundLine cantidad a devolver de una línea de la venta original.
type RefundLine struct {
	LineItemID string
	Quantity   int
}

// RefundRequest solicitud de reembolso. Sin Lines se devuelve todo lo pendiente.
// Payments es un desglose explícito opcional con montos positivos (lo devuelto por método).
type RefundRequest struct {
	Lines    []RefundLine
	Payments []entity.Payment
}

// CalculateRefund construye la devolución (sin ID ni fecha) contra la venta original.
//
// Descuento e impuesto se asignan con las tasas de la venta original, nunca con la configuración
// vigente. Ninguna devolución parcial supera el descuento o impuesto aún pendiente, y la que
// agota todas las cantidades absorbe el residuo (original menos lo ya devuelto en priorReturns)
// para que venta y devoluciones sumen cero sin cambiar de signo.
func CalculateRefund(original *entity.Sale, priorReturns []*entity.Sale, req RefundRequest, p money.Precision) (*entity.Sale, error) {
	if original == nil {
		return nil, domain.ErrNotFound
	}
	if original.Type != entity.SaleTypeSale {
		return nil, domain.NewValidationError("sale_id", "solo se pueden reembolsar ventas, no devoluciones")
	}
	if original.Status == entity.SaleStatusRefunded {
		return nil, &domain.NothingToRefundError{SaleID: original.ID, Reason: "la venta ya está reembolsada"}
	}

	qtyByLine, err := resolveRefundQuantities(original, req.Lines)
	if err != nil {
		return nil, err
	}

	var (
		items          []entity.LineItem
		refundedUnits  int
		remainingUnits int
	)
	for _, line := range original.Items {
		remainingUnits += line.Remaining()
		q := qtyByLine[line.ID]
		if q == 0 {
			continue
		}
		refundedUnits += q
		items = append(items, entity.LineItem{
			ProductID:       line.ProductID,
			VariantID:       line.VariantID,
			Name:            line.Name,
			SKU:             line.SKU,
			UnitRetailPrice: line.UnitRetailPrice,
			UnitCostPrice:   line.UnitCostPrice,
			Quantity:        -q,
			OriginalSaleID:  original.ID,
			OriginalLineID:  line.ID,
		})
	}
	if refundedUnits == 0 {
		return nil, &domain.NothingToRefundError{SaleID: original.ID, Reason: "no hay cantidades pendientes en la solicitud"}
	}

	// Se calcula en positivo y se niega al final.
	refundSubtotal := Subtotal(items, p).Neg()
	priorDiscount, priorTax := decimal.Zero, decimal.Zero
	for _, r := range priorReturns {
		priorDiscount = priorDiscount.Add(r.Discount.Neg())
		priorTax = priorTax.Add(r.Tax.Neg())
	}
	pendingDiscount := nonNegative(original.Discount.Sub(priorDiscount))
	pendingTax := nonNegative(original.Tax.Sub(priorTax))

	var refundDiscount, refundTax decimal.Decimal
	if refundedUnits == remainingUnits {
		refundDiscount = pendingDiscount
		refundTax = pendingTax
	} else {
		// Cada parcial redondea por su cuenta; el tope evita devolver más de lo pendiente.
		refundDiscount = decimal.Min(p.Proportion(original.Discount, refundSubtotal, original.Subtotal), pendingDiscount)
		originalTaxable := original.Subtotal.Sub(original.Discount)
		refundTaxable := refundSubtotal.Sub(refundDiscount)
		refundTax = decimal.Min(p.Proportion(original.Tax, refundTaxable, originalTaxable), pendingTax)
	}
	refundTotal := refundSubtotal.Sub(refundDiscount).Add(refundTax)
	refundCOGS := COGS(items, p)

	payments, err := refundPayments(original, req.Payments, refundTotal, p)
	if err != nil {
		return nil, err
	}

	ret := &entity.Sale{
		WorkspaceID:    original.WorkspaceID,
		Type:           entity.SaleTypeReturn,
		OriginalSaleID: original.ID,
		Items:          items,
		Subtotal:       refundSubtotal.Neg(),
		Discount:       refundDiscount.Neg(),
		Tax:            refundTax.Neg(),
		Total:          refundTotal.Neg(),
		COGS:           refundCOGS.Neg(),
		Payments:       payments,
		ChangeDue:      decimal.Zero,
		CustomerID:     original.CustomerID,
	}
	ret.Profit = Profit(ret.Total, ret.Tax, ret.COGS)
	return ret, nil
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// resolveRefundQuantities valida la solicitud y devuelve la cantidad a reembolsar por línea.
func resolveRefundQuantities(original *entity.Sale, lines []RefundLine) (map[string]int, error) {
	out := make(map[string]int, len(original.Items))
	if len(lines) == 0 {
		for _, line := range original.Items {
			out[line.ID] = line.Remaining()
		}
		return out, nil
	}

	byID := make(map[string]entity.LineItem, len(original.Items))
	for _, line := range original.Items {
		byID[line.ID] = line
	}
	for _, rl := range lines {
		line, ok := byID[rl.LineItemID]
		if !ok {
			return nil, domain.NewValidationError("items", "la línea %q no pertenece a la venta %s", rl.LineItemID, original.ID)
		}
		if rl.Quantity < 0 {
			return nil, domain.NewValidationError("items", "cantidad negativa para la línea %q", rl.LineItemID)
		}
		if _, dup := out[rl.LineItemID]; dup {
			return nil, domain.NewValidationError("items", "la línea %q aparece más de una vez", rl.LineItemID)
		}
		if rl.Quantity > line.Remaining() {
			return nil, domain.NewValidationError("items", "la línea %q solo tiene %d unidades por devolver (solicitadas %d)",
				rl.LineItemID, line.Remaining(), rl.Quantity)
		}
		out[rl.LineItemID] = rl.Quantity
	}
	return out, nil
}

// refundPayments un pago consolidado con el método principal de la venta, salvo desglose explícito.
func refundPayments(original *entity.Sale, explicit []entity.Payment, refundTotal decimal.Decimal, p money.Precision) ([]entity.Payment, error) {
	if len(explicit) == 0 {
		return []entity.Payment{{Method: PrimaryPaymentMethod(original.Payments), Amount: refundTotal.Neg()}}, nil
	}
	out := make([]entity.Payment, 0, len(explicit))
	sum := decimal.Zero
	for i, pm := range explicit {
		if pm.Amount.IsNegative() {
			return nil, domain.NewValidationError("payments", "el pago %d debe indicar el monto devuelto en positivo", i)
		}
		sum = sum.Add(pm.Amount)
		out = append(out, entity.Payment{Method: pm.Method, Amount: p.Round(pm.Amount).Neg()})
	}
	if !p.Round(sum).Equal(refundTotal) {
		return nil, domain.NewValidationError("payments", "el desglose (%s) no coincide con el total a devolver (%s)", sum, refundTotal)
	}
	return out, nil
}

// PrimaryPaymentMethod método con mayor monto; en empate gana el primero. Efectivo si no hay pagos.
func PrimaryPaymentMethod(payments []entity.Payment) string {
	method := entity.PaymentMethodCash
	best := decimal.Zero
	for i, pm := range payments {
		if i == 0 || pm.Amount.Abs().GreaterThan(best) {
			method = pm.Method
			best = pm.Amount.Abs()
		}
	}
	return method
}
