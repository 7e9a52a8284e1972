package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/money"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/internal/domain/sales"
)

// ProcessSale registra una venta o una devolución.
//
// Venta: resuelve productos y precios, calcula totales con la configuración vigente, valida pagos
// y en una sola transacción guarda la venta, descuenta stock por línea (motivo "Sale") y agrega
// la auditoría. Devolución: se delega al cálculo de reembolso contra OriginalSaleID.
// Cualquier error de validación ocurre antes de escribir.
func (uc *SalesUseCase) ProcessSale(ctx context.Context, cmd ProcessSaleCommand) (*SaleResult, error) {
	if cmd.WorkspaceID == "" {
		return nil, domain.NewValidationError("workspace_id", "el workspace es obligatorio")
	}
	if cmd.Type == "" {
		cmd.Type = entity.SaleTypeSale
	}
	if cmd.Type != entity.SaleTypeSale && cmd.Type != entity.SaleTypeReturn {
		return nil, domain.NewValidationError("type", "tipo de transacción %q inválido", cmd.Type)
	}
	if len(cmd.Items) == 0 {
		return nil, domain.NewValidationError("items", "la transacción no tiene líneas")
	}
	for i, it := range cmd.Items {
		if it.ProductID == "" {
			return nil, domain.NewValidationError("items", "línea %d sin producto", i)
		}
		if it.Quantity == 0 {
			return nil, domain.NewValidationError("items", "línea %d con cantidad cero", i)
		}
		if cmd.Type == entity.SaleTypeSale && it.Quantity < 0 {
			return nil, domain.NewValidationError("items", "línea %d: una venta no admite cantidades negativas", i)
		}
		if it.UnitRetailPrice != nil && it.UnitRetailPrice.IsNegative() {
			return nil, domain.NewValidationError("items", "línea %d con precio negativo", i)
		}
	}

	replay, release, err := uc.reserveIdempotency(ctx, cmd.WorkspaceID, cmd.IdempotencyKey)
	if err != nil || replay != nil {
		return replay, err
	}

	var res *SaleResult
	if cmd.Type == entity.SaleTypeReturn {
		res, err = uc.processReturn(ctx, cmd)
	} else {
		res, err = uc.processSale(ctx, cmd)
	}
	release(res, err)
	return res, err
}

func (uc *SalesUseCase) processSale(ctx context.Context, cmd ProcessSaleCommand) (*SaleResult, error) {
	settings, err := uc.settings.Settings(ctx, cmd.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("leer configuración de ventas: %w", err)
	}
	p := money.PrecisionFor(settings.IntegerCurrency)

	if cmd.CustomerID != "" {
		if err := uc.checkCustomer(ctx, cmd.WorkspaceID, cmd.CustomerID); err != nil {
			return nil, err
		}
	}

	// Validar productos y precios (fuera de la tx, solo lectura)
	items := make([]entity.LineItem, 0, len(cmd.Items))
	for _, in := range cmd.Items {
		line, err := uc.resolveLine(ctx, cmd.WorkspaceID, in, p)
		if err != nil {
			return nil, err
		}
		items = append(items, line)
	}

	totals, err := sales.ComputeSaleTotals(items, cmd.Discount, settings)
	if err != nil {
		return nil, err
	}
	changeDue, err := sales.ValidatePayments(cmd.Payments, totals.Total, settings.ChangeDueEnabled, p)
	if err != nil {
		return nil, err
	}

	sale := &entity.Sale{
		WorkspaceID:    cmd.WorkspaceID,
		Type:           entity.SaleTypeSale,
		Status:         entity.SaleStatusCompleted,
		Items:          items,
		Payments:       append([]entity.Payment(nil), cmd.Payments...),
		ChangeDue:      changeDue,
		CustomerID:     cmd.CustomerID,
		IdempotencyKey: cmd.IdempotencyKey,
		Note:           strings.TrimSpace(cmd.Note),
	}
	sales.ApplyTotals(sale, totals)

	unlock := uc.locks.lock(cmd.WorkspaceID)
	defer unlock()

	uc.stamp(sale, cmd.Actor)
	var warnings []domain.ConsistencyWarning
	err = uc.txRunner.RunLedger(ctx, func(
		saleRepo repository.SaleRepository,
		stockRepo repository.StockRepository,
		adjRepo repository.InventoryAdjustmentRepository,
	) error {
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		// Si el stock falla se hace rollback y la venta no queda registrada
		w, err := uc.applyStock(ctx, stockRepo, adjRepo, sale, entity.AdjustmentReasonSale, cmd.Actor.UserID)
		if err != nil {
			return err
		}
		warnings = w
		return nil
	})
	if err != nil {
		if isDuplicate(err) && sale.IdempotencyKey != "" {
			return uc.replayPersisted(ctx, cmd.WorkspaceID, sale.IdempotencyKey)
		}
		return nil, err
	}
	uc.logCommitted(sale, warnings)
	return &SaleResult{Sale: sale, Warnings: warnings}, nil
}

// processReturn traduce una devolución candidata a un RefundCommand contra la venta original.
func (uc *SalesUseCase) processReturn(ctx context.Context, cmd ProcessSaleCommand) (*SaleResult, error) {
	if cmd.OriginalSaleID == "" {
		return nil, domain.NewValidationError("original_sale_id", "una devolución debe referenciar la venta original")
	}
	original, err := uc.loadSale(ctx, cmd.WorkspaceID, cmd.OriginalSaleID)
	if err != nil {
		return nil, err
	}

	lines := make([]RefundItemInput, 0, len(cmd.Items))
	pending := make(map[string]int, len(original.Items))
	for _, it := range original.Items {
		pending[it.ID] = it.Remaining()
	}
	for i, in := range cmd.Items {
		qty := in.Quantity
		if qty < 0 {
			qty = -qty
		}
		lineID := in.OriginalLineItemID
		if lineID == "" {
			lineID = matchLineByProduct(original, in, pending, qty)
		}
		if lineID == "" {
			return nil, domain.NewValidationError("items", "línea %d: el producto %s no está en la venta %s", i, in.ProductID, original.ID)
		}
		pending[lineID] -= qty
		lines = append(lines, RefundItemInput{LineItemID: lineID, Quantity: qty})
	}

	payments := make([]entity.Payment, 0, len(cmd.Payments))
	for _, pm := range cmd.Payments {
		payments = append(payments, entity.Payment{Method: pm.Method, Amount: pm.Amount.Abs()})
	}
	return uc.Refund(ctx, RefundCommand{
		WorkspaceID: cmd.WorkspaceID,
		Actor:       cmd.Actor,
		SaleID:      original.ID,
		Items:       mergeRefundLines(lines),
		Payments:    payments,
		Note:        cmd.Note,
	})
}

// matchLineByProduct primera línea del producto/variante con saldo suficiente.
func matchLineByProduct(original *entity.Sale, in SaleItemInput, pending map[string]int, qty int) string {
	fallback := ""
	for _, it := range original.Items {
		if it.ProductID != in.ProductID || it.VariantID != in.VariantID {
			continue
		}
		if pending[it.ID] >= qty {
			return it.ID
		}
		if fallback == "" {
			fallback = it.ID
		}
	}
	return fallback
}

// mergeRefundLines suma cantidades repetidas de la misma línea.
func mergeRefundLines(lines []RefundItemInput) []RefundItemInput {
	idx := make(map[string]int, len(lines))
	out := make([]RefundItemInput, 0, len(lines))
	for _, l := range lines {
		if i, ok := idx[l.LineItemID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[l.LineItemID] = len(out)
		out = append(out, l)
	}
	return out
}

// resolveLine completa nombre, SKU, precio y costo desde el catálogo.
func (uc *SalesUseCase) resolveLine(ctx context.Context, workspaceID string, in SaleItemInput, p money.Precision) (entity.LineItem, error) {
	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return entity.LineItem{}, err
	}
	if product == nil || product.WorkspaceID != workspaceID {
		return entity.LineItem{}, domain.NotFound("producto", in.ProductID)
	}
	line := entity.LineItem{
		ProductID:       product.ID,
		Name:            product.Name,
		SKU:             product.SKU,
		UnitRetailPrice: product.Price,
		UnitCostPrice:   product.Cost,
		Quantity:        in.Quantity,
	}
	if in.VariantID != "" {
		v, ok := product.FindVariant(in.VariantID)
		if !ok {
			return entity.LineItem{}, domain.NotFound("variante", in.VariantID)
		}
		line.VariantID = v.ID
		line.Name = product.Name + " - " + v.Name
		if v.SKU != "" {
			line.SKU = v.SKU
		}
		line.UnitRetailPrice = v.Price
		line.UnitCostPrice = v.Cost
	} else if len(product.Variants) > 0 {
		return entity.LineItem{}, domain.NewValidationError("items", "el producto %s tiene variantes; indique cuál", product.ID)
	}
	if in.UnitRetailPrice != nil {
		line.UnitRetailPrice = p.Round(*in.UnitRetailPrice)
	}
	if line.UnitRetailPrice.IsNegative() {
		return entity.LineItem{}, domain.NewValidationError("items", "el producto %s tiene precio negativo", product.ID)
	}
	return line, nil
}

func (uc *SalesUseCase) checkCustomer(ctx context.Context, workspaceID, customerID string) error {
	customer, err := uc.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	if customer == nil || customer.WorkspaceID != workspaceID {
		return domain.NotFound("cliente", customerID)
	}
	return nil
}

// reserveIdempotency reserva la clave. Si ya existe una venta confirmada con ella, la devuelve
// como replay. release confirma o libera la clave según el resultado del comando.
func (uc *SalesUseCase) reserveIdempotency(ctx context.Context, workspaceID, key string) (*SaleResult, func(*SaleResult, error), error) {
	noop := func(*SaleResult, error) {}
	if key == "" || uc.idempotency == nil {
		return nil, noop, nil
	}
	scoped := workspaceID + ":" + key

	ok, err := uc.idempotency.Reserve(ctx, scoped, uc.idemTTL)
	if err != nil {
		return nil, noop, fmt.Errorf("reservar clave de idempotencia: %w", err)
	}
	if !ok {
		saleID, found, err := uc.idempotency.Lookup(ctx, scoped)
		if err != nil {
			return nil, noop, fmt.Errorf("consultar clave de idempotencia: %w", err)
		}
		if !found || saleID == "" {
			return nil, noop, domain.ErrIdempotencyInUse
		}
		sale, err := uc.loadSale(ctx, workspaceID, saleID)
		if err != nil {
			return nil, noop, err
		}
		return &SaleResult{Sale: sale, Replayed: true}, noop, nil
	}

	release := func(res *SaleResult, err error) {
		// Contexto propio: la clave debe liberarse aunque el request se haya cancelado
		bg := context.WithoutCancel(ctx)
		if err != nil || res == nil {
			if rerr := uc.idempotency.Release(bg, scoped); rerr != nil {
				uc.logger.Error().Err(rerr).Str("key", scoped).Msg("liberar clave de idempotencia")
			}
			return
		}
		if cerr := uc.idempotency.Complete(bg, scoped, res.Sale.ID, uc.idemTTL); cerr != nil {
			uc.logger.Error().Err(cerr).Str("key", scoped).Msg("confirmar clave de idempotencia")
		}
	}
	return nil, release, nil
}

// replayPersisted la clave ya no está en el store (vencida o desalojada) pero la venta quedó
// registrada con ella: se devuelve esa venta como replay.
func (uc *SalesUseCase) replayPersisted(ctx context.Context, workspaceID, key string) (*SaleResult, error) {
	prior, err := uc.saleRepo.GetByIdempotencyKey(ctx, workspaceID, key)
	if err != nil {
		return nil, err
	}
	if prior == nil {
		return nil, domain.ErrIdempotencyInUse
	}
	uc.logger.Info().Str("workspace_id", workspaceID).Str("sale_id", prior.ID).Msg("replay desde la venta persistida")
	return &SaleResult{Sale: prior, Replayed: true}, nil
}

// deltaFor delta de stock de una línea: las ventas descuentan, las devoluciones reponen.
func deltaFor(tx *entity.Sale, it entity.LineItem, reason, userID string) inventory.DeltaInput {
	return inventory.DeltaInput{
		WorkspaceID:   tx.WorkspaceID,
		ProductID:     it.ProductID,
		VariantID:     it.VariantID,
		Delta:         -it.Quantity,
		Reason:        reason,
		TransactionID: tx.ID,
		UserID:        userID,
		Date:          tx.Date,
	}
}

// isDuplicate reconoce el choque de la clave de idempotencia persistida.
func isDuplicate(err error) bool {
	return errors.Is(err, domain.ErrDuplicate)
}
