package sales

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/internal/domain/sales"
)

// DeleteSale elimina una venta, todas las devoluciones que la referencian y las filas de auditoría
// de esas transacciones. No toca el stock actual: es una corrección administrativa.
//
// Si el ID es de una devolución, se elimina solo esa devolución (y su auditoría) y se recalculan
// los contadores y el estado de la venta original con las devoluciones restantes.
// Eliminar algo que ya no existe retorna NotFoundError.
func (uc *SalesUseCase) DeleteSale(ctx context.Context, cmd DeleteSaleCommand) (*DeleteResult, error) {
	if cmd.WorkspaceID == "" {
		return nil, domain.NewValidationError("workspace_id", "el workspace es obligatorio")
	}
	if cmd.SaleID == "" {
		return nil, domain.NewValidationError("sale_id", "el ID de la venta es obligatorio")
	}

	unlock := uc.locks.lock(cmd.WorkspaceID)
	defer unlock()

	var res DeleteResult
	var tx *entity.Sale
	err := uc.txRunner.RunLedger(ctx, func(
		saleRepo repository.SaleRepository,
		_ repository.StockRepository,
		adjRepo repository.InventoryAdjustmentRepository,
	) error {
		var err error
		tx, err = saleRepo.GetForUpdate(ctx, cmd.SaleID)
		if err != nil {
			return err
		}
		if tx == nil || tx.WorkspaceID != cmd.WorkspaceID {
			return domain.NotFound("venta", cmd.SaleID)
		}
		if tx.IsReturn() {
			return uc.deleteReturn(ctx, saleRepo, adjRepo, tx, &res)
		}

		returns, err := saleRepo.ListReturnsByOriginal(ctx, tx.ID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(returns)+1)
		ids = append(ids, tx.ID)
		for _, r := range returns {
			ids = append(ids, r.ID)
		}
		res.DeletedAdjustmentCount, err = adjRepo.DeleteByTransactions(ctx, ids)
		if err != nil {
			return err
		}
		for _, r := range returns {
			if err := saleRepo.Delete(ctx, r.ID); err != nil {
				return err
			}
		}
		res.DeletedReturnCount = len(returns)
		return saleRepo.Delete(ctx, tx.ID)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("workspace_id", cmd.WorkspaceID).
		Str("sale_id", cmd.SaleID).
		Str("type", tx.Type).
		Str("deleted_by", cmd.Actor.UserID).
		Int("returns", res.DeletedReturnCount).
		Int("adjustments", res.DeletedAdjustmentCount).
		Msg("transacción eliminada (stock sin cambios)")
	return &res, nil
}

// deleteReturn elimina una devolución y reconstruye el estado de la venta original.
func (uc *SalesUseCase) deleteReturn(
	ctx context.Context,
	saleRepo repository.SaleRepository,
	adjRepo repository.InventoryAdjustmentRepository,
	ret *entity.Sale,
	res *DeleteResult,
) error {
	n, err := adjRepo.DeleteByTransactions(ctx, []string{ret.ID})
	if err != nil {
		return err
	}
	res.DeletedAdjustmentCount = n
	if err := saleRepo.Delete(ctx, ret.ID); err != nil {
		return err
	}

	parent, err := saleRepo.GetForUpdate(ctx, ret.OriginalSaleID)
	if err != nil {
		return err
	}
	if parent == nil {
		return nil
	}
	res.ParentSaleID = parent.ID
	remaining, err := saleRepo.ListReturnsByOriginal(ctx, parent.ID)
	if err != nil {
		return err
	}
	if err := sales.RebuildRefundState(parent, remaining); err != nil {
		return err
	}
	parent.UpdatedAt = uc.now()
	return saleRepo.UpdateRefundState(ctx, parent)
}
