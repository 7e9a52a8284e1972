package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/money"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/internal/domain/sales"
)

// defaultIdempotencyTTL vigencia de una clave de idempotencia.
const defaultIdempotencyTTL = 24 * time.Hour

// SalesUseCase motor del ledger: registra ventas, reembolsos y la cascada de borrado.
// Cada comando valida fuera de la transacción y escribe todo en una sola transacción.
type SalesUseCase struct {
	txRunner     LedgerTxRunner
	stock        StockLedger
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	settings     SettingsProvider
	idempotency  IdempotencyStore
	idemTTL      time.Duration
	locks        *workspaceLocks
	logger       zerolog.Logger
	now          func() time.Time
}

// NewSalesUseCase construye el caso de uso. idempotency puede ser nil (sin soporte de claves).
func NewSalesUseCase(
	txRunner LedgerTxRunner,
	stock StockLedger,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	settings SettingsProvider,
	idempotency IdempotencyStore,
	logger zerolog.Logger,
) *SalesUseCase {
	return &SalesUseCase{
		txRunner:     txRunner,
		stock:        stock,
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		settings:     settings,
		idempotency:  idempotency,
		idemTTL:      defaultIdempotencyTTL,
		locks:        newWorkspaceLocks(),
		logger:       logger.With().Str("component", "sales").Logger(),
		now:          time.Now,
	}
}

// WithIdempotencyTTL cambia la vigencia de las claves; ttl <= 0 se ignora.
func (uc *SalesUseCase) WithIdempotencyTTL(ttl time.Duration) *SalesUseCase {
	if ttl > 0 {
		uc.idemTTL = ttl
	}
	return uc
}

// WithClock reemplaza el reloj (pruebas).
func (uc *SalesUseCase) WithClock(now func() time.Time) *SalesUseCase {
	uc.now = now
	return uc
}

// GetSale obtiene una venta o devolución con sus devoluciones y la utilidad reconciliada.
func (uc *SalesUseCase) GetSale(ctx context.Context, workspaceID, id string) (*SaleDetail, error) {
	sale, err := uc.loadSale(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	p, err := uc.precision(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	detail := &SaleDetail{Sale: sale}
	if check := sales.ReconcileProfit(sale, p); check.Recomputed {
		sale.Profit = check.Profit
		sale.COGS = check.COGS
		if check.Warning != nil {
			detail.Warnings = append(detail.Warnings, *check.Warning)
		}
	}
	if sale.Type == entity.SaleTypeSale {
		detail.Returns, err = uc.saleRepo.ListReturnsByOriginal(ctx, sale.ID)
		if err != nil {
			return nil, err
		}
	}
	return detail, nil
}

// ListSales lista ventas y devoluciones del workspace en el rango (más recientes primero).
func (uc *SalesUseCase) ListSales(ctx context.Context, workspaceID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	if limit <= 0 {
		limit = 20
	}
	return uc.saleRepo.ListByWorkspace(ctx, workspaceID, from, to, limit, offset)
}

// loadSale lee una transacción del workspace; NotFoundError si no existe o es de otro workspace.
func (uc *SalesUseCase) loadSale(ctx context.Context, workspaceID, id string) (*entity.Sale, error) {
	if id == "" {
		return nil, domain.NewValidationError("sale_id", "el ID de la venta es obligatorio")
	}
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil || sale.WorkspaceID != workspaceID {
		return nil, domain.NotFound("venta", id)
	}
	return sale, nil
}

func (uc *SalesUseCase) precision(ctx context.Context, workspaceID string) (money.Precision, error) {
	s, err := uc.settings.Settings(ctx, workspaceID)
	if err != nil {
		return 0, fmt.Errorf("leer configuración de ventas: %w", err)
	}
	return money.PrecisionFor(s.IntegerCurrency), nil
}

// stamp asigna ID, número público, fecha y vendedor a una transacción nueva.
func (uc *SalesUseCase) stamp(sale *entity.Sale, actor Actor) {
	now := uc.now()
	sale.ID = uuid.New().String()
	sale.PublicID = publicID(sale.Type, now, sale.ID)
	sale.Date = now
	sale.CreatedAt = now
	sale.UpdatedAt = now
	sale.SalespersonID = actor.UserID
	sale.SalespersonName = actor.Name
	for i := range sale.Items {
		sale.Items[i].ID = uuid.New().String()
		sale.Items[i].SaleID = sale.ID
	}
}

// publicID número legible: V-20240301-1A2B3C4D (venta) o D-... (devolución).
func publicID(saleType string, date time.Time, id string) string {
	prefix := "V"
	if saleType == entity.SaleTypeReturn {
		prefix = "D"
	}
	short := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, date.Format("20060102"), short)
}

// applyStock aplica un delta por línea con el motivo dado y junta las advertencias.
func (uc *SalesUseCase) applyStock(
	ctx context.Context,
	stockRepo repository.StockRepository,
	adjRepo repository.InventoryAdjustmentRepository,
	tx *entity.Sale,
	reason string,
	userID string,
) ([]domain.ConsistencyWarning, error) {
	var warnings []domain.ConsistencyWarning
	for _, it := range tx.Items {
		_, warning, err := uc.stock.ApplyDeltaInTx(ctx, adjRepo, stockRepo, deltaFor(tx, it, reason, userID))
		if err != nil {
			return nil, err
		}
		if warning != nil {
			warnings = append(warnings, *warning)
		}
	}
	return warnings, nil
}

func (uc *SalesUseCase) logCommitted(tx *entity.Sale, warnings []domain.ConsistencyWarning) {
	ev := uc.logger.Info()
	if len(warnings) > 0 {
		ev = uc.logger.Warn().Int("warnings", len(warnings))
	}
	ev.Str("workspace_id", tx.WorkspaceID).
		Str("sale_id", tx.ID).
		Str("public_id", tx.PublicID).
		Str("type", tx.Type).
		Str("total", tx.Total.String()).
		Msg("transacción registrada")
}
