package sales

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/money"
)

// ProfitCheck resultado de ReconcileProfit.
type ProfitCheck struct {
	Profit     decimal.Decimal
	COGS       decimal.Decimal
	Recomputed bool
	Warning    *domain.ConsistencyWarning
}

// ReconcileProfit decide qué utilidad usar para una transacción almacenada.
//
// La utilidad guardada se descarta y se recalcula desde las líneas (total − impuesto − Σ costo)
// cuando es ~0 con un total distinto de cero (filas heredadas o NULL), o cuando no coincide
// con el recálculo. Solo se emite advertencia si el valor cambia.
func ReconcileProfit(sale *entity.Sale, p money.Precision) ProfitCheck {
	cogs := COGS(sale.Items, p)
	if sale.IsReturn() {
		cogs = cogs.Neg()
	}
	expected := Profit(sale.Total, sale.Tax, cogs)

	suspicious := p.IsZero(sale.Profit) && !p.IsZero(sale.Total)
	if !suspicious && p.Equal(sale.Profit, expected) {
		return ProfitCheck{Profit: sale.Profit, COGS: sale.COGS}
	}

	check := ProfitCheck{Profit: expected, COGS: cogs, Recomputed: true}
	if !p.Equal(sale.Profit, expected) {
		check.Warning = &domain.ConsistencyWarning{
			Code:    domain.WarningProfitRecomputed,
			Message: fmt.Sprintf("utilidad almacenada %s recalculada a %s", sale.Profit, expected),
			SaleID:  sale.ID,
		}
	}
	return check
}
