package sales

import (
	"fmt"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

var statusRank = map[string]int{
	entity.SaleStatusCompleted:         0,
	entity.SaleStatusPartiallyRefunded: 1,
	entity.SaleStatusRefunded:          2,
}

// DeriveStatus estado de una venta según sus contadores de devolución.
// Las devoluciones no tienen estado.
func DeriveStatus(sale *entity.Sale) string {
	if sale.Type != entity.SaleTypeSale {
		return ""
	}
	returned := sale.TotalReturned()
	switch {
	case returned <= 0:
		return entity.SaleStatusCompleted
	case returned < sale.TotalQuantity():
		return entity.SaleStatusPartiallyRefunded
	default:
		return entity.SaleStatusRefunded
	}
}

// ApplyReturn incrementa los ReturnedQuantity de la venta original con las líneas de la devolución
// y recalcula su estado. Falla si alguna línea excede lo pendiente o si el estado retrocedería.
// Muta original solo si todo es válido.
func ApplyReturn(original *entity.Sale, ret *entity.Sale) error {
	if original.Type != entity.SaleTypeSale {
		return domain.NewValidationError("original_sale_id", "la transacción %s no es una venta", original.ID)
	}
	if ret.OriginalSaleID != original.ID {
		return domain.NewValidationError("original_sale_id", "la devolución no referencia la venta %s", original.ID)
	}

	next := original.Clone()
	for _, rl := range ret.Items {
		if rl.Quantity >= 0 {
			return domain.NewValidationError("items", "las líneas de una devolución deben tener cantidad negativa")
		}
		idx := matchOriginalLine(next, rl)
		if idx < 0 {
			return domain.NewValidationError("items", "el producto %s no está pendiente de devolución en la venta %s", rl.ProductID, original.ID)
		}
		next.Items[idx].ReturnedQuantity += -rl.Quantity
		if next.Items[idx].ReturnedQuantity > next.Items[idx].Quantity {
			return domain.NewValidationError("items", "la línea %s excede la cantidad vendida", next.Items[idx].ID)
		}
	}

	status := DeriveStatus(next)
	if err := checkTransition(original.Status, status); err != nil {
		return err
	}
	next.Status = status

	original.Items = next.Items
	original.Status = next.Status
	return nil
}

// RebuildRefundState recalcula contadores y estado desde cero con las devoluciones vigentes.
// Se usa al eliminar una devolución; es la única vía en la que el estado puede retroceder.
func RebuildRefundState(original *entity.Sale, returns []*entity.Sale) error {
	next := original.Clone()
	for i := range next.Items {
		next.Items[i].ReturnedQuantity = 0
	}
	next.Status = entity.SaleStatusCompleted
	for _, r := range returns {
		if err := ApplyReturn(next, r); err != nil {
			return err
		}
	}
	original.Items = next.Items
	original.Status = next.Status
	return nil
}

// matchOriginalLine ubica la línea original: por OriginalLineID, o por producto/variante con saldo pendiente.
func matchOriginalLine(sale *entity.Sale, rl entity.LineItem) int {
	if rl.OriginalLineID != "" {
		for i, it := range sale.Items {
			if it.ID == rl.OriginalLineID {
				return i
			}
		}
		return -1
	}
	for i, it := range sale.Items {
		if it.ProductID == rl.ProductID && it.VariantID == rl.VariantID && it.Remaining() > 0 {
			return i
		}
	}
	return -1
}

func checkTransition(from, to string) error {
	if from == "" {
		from = entity.SaleStatusCompleted
	}
	if statusRank[to] < statusRank[from] {
		return fmt.Errorf("%w: transición de estado %s -> %s", domain.ErrConflict, from, to)
	}
	return nil
}
