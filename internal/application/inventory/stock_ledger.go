package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/inventory"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// StockLedger es el único escritor del stock de productos y variantes.
// Cada cambio bloquea la fila (SELECT FOR UPDATE), actualiza la cantidad y agrega una fila de auditoría.
// El stock puede quedar negativo: no se rechaza, se devuelve una advertencia.
type StockLedger struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	adjRepo     repository.InventoryAdjustmentRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewStockLedger construye el ledger de stock.
func NewStockLedger(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	adjRepo repository.InventoryAdjustmentRepository,
	logger zerolog.Logger,
) *StockLedger {
	return &StockLedger{
		txRunner:    txRunner,
		productRepo: productRepo,
		adjRepo:     adjRepo,
		logger:      logger.With().Str("component", "stock_ledger").Logger(),
		now:         time.Now,
	}
}

// DeltaInput cambio de stock a aplicar dentro de la transacción del caller.
// TransactionID referencia la venta o devolución (vacío en ajustes manuales).
type DeltaInput struct {
	WorkspaceID   string
	ProductID     string
	VariantID     string
	Delta         int
	Reason        string
	TransactionID string
	UserID        string
	Date          time.Time
}

// AdjustStockCommand ajuste manual con motivo libre.
type AdjustStockCommand struct {
	WorkspaceID string
	UserID      string
	ProductID   string
	VariantID   string
	Delta       int
	Reason      string
}

// ReceiveStockCommand entrada de mercancía. Con UnitCost se recalcula el costo promedio ponderado.
type ReceiveStockCommand struct {
	WorkspaceID string
	UserID      string
	ProductID   string
	VariantID   string
	Quantity    int
	UnitCost    *decimal.Decimal
}

// AdjustmentResult fila de auditoría creada y advertencias (stock negativo).
type AdjustmentResult struct {
	Adjustment *entity.InventoryAdjustment
	Warnings   []domain.ConsistencyWarning
}

// ApplyDeltaInTx aplica delta usando los repositorios del caller (misma transacción).
// Si retorna error el caller debe hacer rollback.
func (l *StockLedger) ApplyDeltaInTx(
	ctx context.Context,
	adjRepo repository.InventoryAdjustmentRepository,
	stockRepo repository.StockRepository,
	in DeltaInput,
) (*entity.InventoryAdjustment, *domain.ConsistencyWarning, error) {
	if in.Delta == 0 {
		return nil, nil, domain.NewValidationError("quantity", "el cambio de stock no puede ser cero")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, nil, domain.NewValidationError("reason", "el motivo es obligatorio")
	}
	date := in.Date
	if date.IsZero() {
		date = l.now()
	}

	// Bloquea la fila de stock para evitar condiciones de carrera
	stock, err := stockRepo.GetForUpdate(ctx, in.ProductID, in.VariantID)
	if err != nil {
		return nil, nil, err
	}
	stock.Quantity += in.Delta
	stock.UpdatedAt = date
	if err := stockRepo.Upsert(ctx, stock); err != nil {
		return nil, nil, err
	}

	adj := &entity.InventoryAdjustment{
		ID:            uuid.New().String(),
		WorkspaceID:   in.WorkspaceID,
		ProductID:     in.ProductID,
		VariantID:     in.VariantID,
		Date:          date,
		QuantityDelta: in.Delta,
		Reason:        strings.TrimSpace(in.Reason),
		TransactionID: in.TransactionID,
		StockAfter:    stock.Quantity,
		CreatedBy:     in.UserID,
	}
	if err := adjRepo.Create(ctx, adj); err != nil {
		return nil, nil, err
	}

	var warning *domain.ConsistencyWarning
	if stock.Quantity < 0 {
		warning = &domain.ConsistencyWarning{
			Code:      domain.WarningNegativeStock,
			Message:   fmt.Sprintf("stock negativo (%d) tras %q", stock.Quantity, adj.Reason),
			ProductID: in.ProductID,
			VariantID: in.VariantID,
			SaleID:    in.TransactionID,
		}
	}
	return adj, warning, nil
}

// AdjustStock ajuste manual en su propia transacción.
func (l *StockLedger) AdjustStock(ctx context.Context, cmd AdjustStockCommand) (*AdjustmentResult, error) {
	if strings.TrimSpace(cmd.Reason) == "" {
		return nil, domain.NewValidationError("reason", "el motivo es obligatorio")
	}
	if cmd.Delta == 0 {
		return nil, domain.NewValidationError("delta", "el ajuste no puede ser cero")
	}
	if _, err := l.resolveTarget(ctx, cmd.WorkspaceID, cmd.ProductID, cmd.VariantID, true); err != nil {
		return nil, err
	}

	var res AdjustmentResult
	err := l.txRunner.Run(ctx, func(
		adjRepo repository.InventoryAdjustmentRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		adj, warning, err := l.ApplyDeltaInTx(ctx, adjRepo, stockRepo, DeltaInput{
			WorkspaceID: cmd.WorkspaceID,
			ProductID:   cmd.ProductID,
			VariantID:   cmd.VariantID,
			Delta:       cmd.Delta,
			Reason:      cmd.Reason,
			UserID:      cmd.UserID,
		})
		if err != nil {
			return err
		}
		res.Adjustment = adj
		if warning != nil {
			res.Warnings = append(res.Warnings, *warning)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.logAdjustment(res)
	return &res, nil
}

// ReceiveStock entrada de mercancía con motivo "Stock Received".
func (l *StockLedger) ReceiveStock(ctx context.Context, cmd ReceiveStockCommand) (*AdjustmentResult, error) {
	if cmd.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "la cantidad recibida debe ser positiva")
	}
	if cmd.UnitCost != nil && cmd.UnitCost.IsNegative() {
		return nil, domain.NewValidationError("unit_cost", "el costo unitario no puede ser negativo")
	}
	if _, err := l.resolveTarget(ctx, cmd.WorkspaceID, cmd.ProductID, cmd.VariantID, true); err != nil {
		return nil, err
	}

	var res AdjustmentResult
	err := l.txRunner.Run(ctx, func(
		adjRepo repository.InventoryAdjustmentRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		if cmd.UnitCost != nil {
			if err := l.updateCost(ctx, stockRepo, productRepo, cmd); err != nil {
				return err
			}
		}
		adj, warning, err := l.ApplyDeltaInTx(ctx, adjRepo, stockRepo, DeltaInput{
			WorkspaceID: cmd.WorkspaceID,
			ProductID:   cmd.ProductID,
			VariantID:   cmd.VariantID,
			Delta:       cmd.Quantity,
			Reason:      entity.AdjustmentReasonStockReceived,
			UserID:      cmd.UserID,
		})
		if err != nil {
			return err
		}
		res.Adjustment = adj
		if warning != nil {
			res.Warnings = append(res.Warnings, *warning)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.logAdjustment(res)
	return &res, nil
}

// updateCost recalcula el costo promedio ponderado con el stock previo a la entrada.
func (l *StockLedger) updateCost(
	ctx context.Context,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	cmd ReceiveStockCommand,
) error {
	product, err := productRepo.GetByID(ctx, cmd.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.NotFound("producto", cmd.ProductID)
	}
	stock, err := stockRepo.GetForUpdate(ctx, cmd.ProductID, cmd.VariantID)
	if err != nil {
		return err
	}
	if cmd.VariantID != "" {
		v, ok := product.FindVariant(cmd.VariantID)
		if !ok {
			return domain.NotFound("variante", cmd.VariantID)
		}
		v.Cost = inventory.WeightedAverageCost(stock.Quantity, v.Cost, cmd.Quantity, *cmd.UnitCost)
	} else {
		product.Cost = inventory.WeightedAverageCost(stock.Quantity, product.Cost, cmd.Quantity, *cmd.UnitCost)
	}
	product.UpdatedAt = l.now()
	return productRepo.Update(ctx, product)
}

// History filas de auditoría de un producto, más recientes primero.
func (l *StockLedger) History(ctx context.Context, workspaceID, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryAdjustment, error) {
	if _, err := l.resolveTarget(ctx, workspaceID, productID, "", false); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return l.adjRepo.ListByProduct(ctx, productID, from, to, limit, offset)
}

// resolveTarget valida (fuera de la tx, solo lectura) que el producto/variante exista y sea del workspace.
// Con requireVariant, un producto con variantes exige indicar cuál.
func (l *StockLedger) resolveTarget(ctx context.Context, workspaceID, productID, variantID string, requireVariant bool) (*entity.Product, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "el producto es obligatorio")
	}
	product, err := l.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", productID)
	}
	if product.WorkspaceID != workspaceID {
		return nil, domain.ErrForbidden
	}
	if variantID != "" {
		if _, ok := product.FindVariant(variantID); !ok {
			return nil, domain.NotFound("variante", variantID)
		}
	} else if requireVariant && len(product.Variants) > 0 {
		return nil, domain.NewValidationError("variant_id", "el producto %s tiene variantes; indique cuál", productID)
	}
	return product, nil
}

func (l *StockLedger) logAdjustment(res AdjustmentResult) {
	adj := res.Adjustment
	ev := l.logger.Info()
	if len(res.Warnings) > 0 {
		ev = l.logger.Warn()
	}
	ev.Str("product_id", adj.ProductID).
		Str("variant_id", adj.VariantID).
		Int("delta", adj.QuantityDelta).
		Int("stock_after", adj.StockAfter).
		Str("reason", adj.Reason).
		Msg("ajuste de stock registrado")
}
