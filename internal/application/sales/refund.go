package sales

import (
	"context"
	"strings"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/money"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/internal/domain/sales"
)

// Refund crea una devolución contra una venta (total si no se indican líneas).
//
// Dentro de una sola transacción: bloquea la venta original, calcula la devolución con las tasas
// de la venta, guarda la devolución, actualiza ReturnedQuantity y estado de la original y repone
// stock por línea (motivo "Return"). Los errores de cálculo ocurren antes de la primera escritura.
func (uc *SalesUseCase) Refund(ctx context.Context, cmd RefundCommand) (*SaleResult, error) {
	if cmd.WorkspaceID == "" {
		return nil, domain.NewValidationError("workspace_id", "el workspace es obligatorio")
	}
	if _, err := uc.loadSale(ctx, cmd.WorkspaceID, cmd.SaleID); err != nil {
		return nil, err
	}
	settings, err := uc.settings.Settings(ctx, cmd.WorkspaceID)
	if err != nil {
		return nil, err
	}
	p := money.PrecisionFor(settings.IntegerCurrency)

	req := sales.RefundRequest{Payments: cmd.Payments}
	for _, it := range cmd.Items {
		req.Lines = append(req.Lines, sales.RefundLine{LineItemID: it.LineItemID, Quantity: it.Quantity})
	}

	unlock := uc.locks.lock(cmd.WorkspaceID)
	defer unlock()

	var (
		ret      *entity.Sale
		warnings []domain.ConsistencyWarning
	)
	err = uc.txRunner.RunLedger(ctx, func(
		saleRepo repository.SaleRepository,
		stockRepo repository.StockRepository,
		adjRepo repository.InventoryAdjustmentRepository,
	) error {
		// Bloquea la venta original (SELECT FOR UPDATE) y relee su estado dentro de la tx
		original, err := saleRepo.GetForUpdate(ctx, cmd.SaleID)
		if err != nil {
			return err
		}
		if original == nil || original.WorkspaceID != cmd.WorkspaceID {
			return domain.NotFound("venta", cmd.SaleID)
		}
		prior, err := saleRepo.ListReturnsByOriginal(ctx, original.ID)
		if err != nil {
			return err
		}

		ret, err = sales.CalculateRefund(original, prior, req, p)
		if err != nil {
			return err
		}
		if _, err := sales.ValidatePayments(ret.Payments, ret.Total, false, p); err != nil {
			return err
		}
		ret.Note = strings.TrimSpace(cmd.Note)
		uc.stamp(ret, cmd.Actor)
		if err := sales.ApplyReturn(original, ret); err != nil {
			return err
		}
		original.UpdatedAt = ret.Date

		if err := saleRepo.Create(ctx, ret); err != nil {
			return err
		}
		if err := saleRepo.UpdateRefundState(ctx, original); err != nil {
			return err
		}
		w, err := uc.applyStock(ctx, stockRepo, adjRepo, ret, entity.AdjustmentReasonReturn, cmd.Actor.UserID)
		if err != nil {
			return err
		}
		warnings = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logCommitted(ret, warnings)
	return &SaleResult{Sale: ret, Warnings: warnings}, nil
}
