package sales_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/application/sales"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const ws = "ws-1"

var cashier = sales.Actor{UserID: "u-1", Name: "Ana"}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertMoney(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "%s: esperado %s, obtenido %s", msg, want, got)
}

type fixture struct {
	ctx    context.Context
	store  *memory.Store
	ledger *inventory.StockLedger
	idem   *cache.InMemoryIdempotencyStore
	uc     *sales.SalesUseCase
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, nil)
}

// newFixtureWith wrap envuelve el LedgerTxRunner del store (nil = el store).
func newFixtureWith(t *testing.T, wrap func(*memory.Store) sales.LedgerTxRunner) *fixture {
	t.Helper()
	store := memory.NewStore()
	var runner sales.LedgerTxRunner = store
	if wrap != nil {
		runner = wrap(store)
	}
	idem := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idem.Close() })

	ledger := inventory.NewStockLedger(store, store.Products(), store.Adjustments(), zerolog.Nop())
	settings := sales.StaticSettings{Value: entity.Settings{TaxRate: d("0.08")}}
	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	uc := sales.NewSalesUseCase(runner, ledger, store.Sales(), store.Products(), store.Customers(), settings, idem, zerolog.Nop()).
		WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		})
	return &fixture{ctx: context.Background(), store: store, ledger: ledger, idem: idem, uc: uc}
}

// product crea un producto y recibe stock inicial.
func (f *fixture) product(t *testing.T, sku, price, cost string, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{WorkspaceID: ws, SKU: sku, Name: sku, Price: d(price), Cost: d(cost)}
	require.NoError(t, f.store.Products().Create(f.ctx, p))
	if stock > 0 {
		_, err := f.ledger.ReceiveStock(f.ctx, inventory.ReceiveStockCommand{
			WorkspaceID: ws, UserID: "u-1", ProductID: p.ID, Quantity: stock,
		})
		require.NoError(t, err)
	}
	return p
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	lvl, err := f.store.Stock().Get(f.ctx, productID, "")
	require.NoError(t, err)
	return lvl.Quantity
}

func (f *fixture) adjustments(t *testing.T, productID string) []*entity.InventoryAdjustment {
	t.Helper()
	out, err := f.store.Adjustments().ListByProduct(f.ctx, productID, nil, nil, 0, 0)
	require.NoError(t, err)
	return out
}

func (f *fixture) transactions(t *testing.T) []*entity.Sale {
	t.Helper()
	out, err := f.store.Sales().ListByWorkspace(f.ctx, ws, nil, nil, 0, 0)
	require.NoError(t, err)
	return out
}

// sell vende qty unidades de p pagando el total exacto con tarjeta.
func (f *fixture) sell(t *testing.T, p *entity.Product, qty int, total string) *entity.Sale {
	t.Helper()
	res, err := f.uc.ProcessSale(f.ctx, sales.ProcessSaleCommand{
		WorkspaceID: ws,
		Actor:       cashier,
		Items:       []sales.SaleItemInput{{ProductID: p.ID, Quantity: qty}},
		Payments:    []entity.Payment{{Method: entity.PaymentMethodCard, Amount: d(total)}},
	})
	require.NoError(t, err)
	return res.Sale
}

// ──────────────────────────────────────────────────────────────────────────────
// ProcessSale
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessSale_Escenario(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)

	sale := f.sell(t, taza, 2, "21.60")

	assert.NotEmpty(t, sale.ID)
	assert.Regexp(t, `^V-20240301-[0-9A-F]{8}$`, sale.PublicID)
	assert.Equal(t, entity.SaleStatusCompleted, sale.Status)
	assert.Equal(t, "Ana", sale.SalespersonName)
	assertMoney(t, "20", sale.Subtotal, "subtotal")
	assertMoney(t, "1.60", sale.Tax, "impuesto")
	assertMoney(t, "21.60", sale.Total, "total")
	assertMoney(t, "12", sale.COGS, "costo")
	assertMoney(t, "8", sale.Profit, "utilidad")
	assertMoney(t, "6", sale.Items[0].UnitCostPrice, "costo congelado en la línea")

	assert.Equal(t, 8, f.stock(t, taza.ID))
	adjs := f.adjustments(t, taza.ID)
	require.Len(t, adjs, 2)
	assert.Equal(t, entity.AdjustmentReasonSale, adjs[0].Reason)
	assert.Equal(t, -2, adjs[0].QuantityDelta)
	assert.Equal(t, sale.ID, adjs[0].TransactionID)
	assert.Equal(t, 8, adjs[0].StockAfter)
}

func TestProcessSale_PagosQueNoCuadranNoEscriben(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)

	_, err := f.uc.ProcessSale(f.ctx, sales.ProcessSaleCommand{
		WorkspaceID: ws,
		Items:       []sales.SaleItemInput{{ProductID: taza.ID, Quantity: 2}},
		Payments:    []entity.Payment{{Method: entity.PaymentMethodCash, Amount: d("20")}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.transactions(t))
	assert.Equal(t, 10, f.stock(t, taza.ID))
}

func TestProcessSale_ProductoDeOtroWorkspace(t *testing.T) {
	f := newFixture(t)
	other := &entity.Product{WorkspaceID: "ws-2", SKU: "X", Name: "X", Price: d("1")}
	require.NoError(t, f.store.Products().Create(f.ctx, other))

	_, err := f.uc.ProcessSale(f.ctx, sales.ProcessSaleCommand{
		WorkspaceID: ws,
		Items:       []sales.SaleItemInput{{ProductID: other.ID, Quantity: 1}},
		Payments:    []entity.Payment{{Method: entity.PaymentMethodCash, Amount: d("1.08")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcessSale_StockNegativoEsAdvertencia(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 1)

	res, err := f.uc.ProcessSale(f.ctx, sales.ProcessSaleCommand{
		WorkspaceID: ws,
		Items:       []sales.SaleItemInput{{ProductID: taza.ID, Quantity: 3}},
		Payments:    []entity.Payment{{Method: entity.PaymentMethodCash, Amount: d("32.40")}},
	})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, domain.WarningNegativeStock, res.Warnings[0].Code)
	assert.Equal(t, taza.ID, res.Warnings[0].ProductID)
	assert.Equal(t, -2, f.stock(t, taza.ID))
}

// failingStockRunner hace fallar la escritura de stock dentro de la transacción del ledger.
type failingStockRunner struct{ *memory.Store }

type failingStock struct{ repository.StockRepository }

func (failingStock) Upsert(context.Context, *entity.StockLevel) error {
	return errors.New("falla de escritura")
}

func (r failingStockRunner) RunLedger(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	stockRepo repository.StockRepository,
	adjRepo repository.InventoryAdjustmentRepository,
) error) error {
	return r.Store.RunLedger(ctx, func(s repository.SaleRepository, st repository.StockRepository, a repository.InventoryAdjustmentRepository) error {
		return fn(s, failingStock{st}, a)
	})
}

func TestProcessSale_FallaDeStockRevierteLaVenta(t *testing.T) {
	f := newFixtureWith(t, func(s *memory.Store) sales.LedgerTxRunner { return failingStockRunner{s} })
	taza := f.product(t, "TAZA", "10", "6", 10)

	_, err := f.uc.ProcessSale(f.ctx, sales.ProcessSaleCommand{
		WorkspaceID: ws,
		Items:       []sales.SaleItemInput{{ProductID: taza.ID, Quantity: 2}},
		Payments:    []entity.Payment{{Method: entity.PaymentMethodCard, Amount: d("21.60")}},
	})
	require.Error(t, err)
	assert.Empty(t, f.transactions(t), "la venta no debe quedar registrada")
	assert.Equal(t, 10, f.stock(t, taza.ID))
	assert.Len(t, f.adjustments(t, taza.ID), 1, "solo la recepción inicial")
}

func TestProcessSale_IdempotenciaDevuelveLaMismaVenta(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)
	cmd := sales.ProcessSaleCommand{
		WorkspaceID:    ws,
		Items:          []sales.SaleItemInput{{ProductID: taza.ID, Quantity: 1}},
		Payments:       []entity.Payment{{Method: entity.PaymentMethodCash, Amount: d("10.80")}},
		IdempotencyKey: "caja-1-0001",
	}

	first, err := f.uc.ProcessSale(f.ctx, cmd)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := f.uc.ProcessSale(f.ctx, cmd)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Sale.ID, second.Sale.ID)

	assert.Len(t, f.transactions(t), 1)
	assert.Equal(t, 9, f.stock(t, taza.ID))
}

func TestProcessSale_ClaveLiberadaTrasError(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)
	cmd := sales.ProcessSaleCommand{
		WorkspaceID:    ws,
		Items:          []sales.SaleItemInput{{ProductID: taza.ID, Quantity: 1}},
		Payments:       []entity.Payment{{Method: entity.PaymentMethodCash, Amount: d("1")}},
		IdempotencyKey: "k",
	}
	_, err := f.uc.ProcessSale(f.ctx, cmd)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	cmd.Payments[0].Amount = d("10.80")
	res, err := f.uc.ProcessSale(f.ctx, cmd)
	require.NoError(t, err)
	assert.False(t, res.Replayed)
}

func TestProcessSale_ClaveEnCurso(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)
	ok, err := f.idem.Reserve(f.ctx, ws+":k", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.uc.ProcessSale(f.ctx, sales.ProcessSaleCommand{
		WorkspaceID:    ws,
		Items:          []sales.SaleItemInput{{ProductID: taza.ID, Quantity: 1}},
		Payments:       []entity.Payment{{Method: entity.PaymentMethodCash, Amount: d("10.80")}},
		IdempotencyKey: "k",
	})
	assert.ErrorIs(t, err, domain.ErrIdempotencyInUse)
}

func TestProcessSale_ClaveVencidaDevuelveLaVentaPersistida(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)
	cmd := sales.ProcessSaleCommand{
		WorkspaceID:    ws,
		Items:          []sales.SaleItemInput{{ProductID: taza.ID, Quantity: 1}},
		Payments:       []entity.Payment{{Method: entity.PaymentMethodCash, Amount: d("10.80")}},
		IdempotencyKey: "k",
	}
	first, err := f.uc.ProcessSale(f.ctx, cmd)
	require.NoError(t, err)

	// La clave sale del store (TTL o desalojo) pero la venta sigue registrada con ella
	require.NoError(t, f.idem.Release(f.ctx, ws+":k"))

	for i := 0; i < 2; i++ {
		res, err := f.uc.ProcessSale(f.ctx, cmd)
		require.NoError(t, err, "reintento %d", i+1)
		assert.True(t, res.Replayed)
		assert.Equal(t, first.Sale.ID, res.Sale.ID)
	}
	assert.Len(t, f.transactions(t), 1)
	assert.Equal(t, 9, f.stock(t, taza.ID))

	saleID, found, err := f.idem.Lookup(f.ctx, ws+":k")
	require.NoError(t, err)
	assert.True(t, found, "el replay vuelve a confirmar la clave")
	assert.Equal(t, first.Sale.ID, saleID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Refund
// ──────────────────────────────────────────────────────────────────────────────

func TestRefund_ParcialReponeStockYActualizaEstado(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)
	sale := f.sell(t, taza, 2, "21.60")

	res, err := f.uc.Refund(f.ctx, sales.RefundCommand{
		WorkspaceID: ws,
		Actor:       cashier,
		SaleID:      sale.ID,
		Items:       []sales.RefundItemInput{{LineItemID: sale.Items[0].ID, Quantity: 1}},
	})
	require.NoError(t, err)
	ret := res.Sale

	assert.Equal(t, entity.SaleTypeReturn, ret.Type)
	assert.Equal(t, sale.ID, ret.OriginalSaleID)
	assert.Regexp(t, `^D-`, ret.PublicID)
	assertMoney(t, "-10", ret.Subtotal, "subtotal")
	assertMoney(t, "-0.80", ret.Tax, "impuesto")
	assertMoney(t, "-10.80", ret.Total, "total")
	assertMoney(t, "-6", ret.COGS, "costo")
	assertMoney(t, "-4", ret.Profit, "utilidad")
	require.Len(t, ret.Payments, 1)
	assert.Equal(t, entity.PaymentMethodCard, ret.Payments[0].Method)
	assertMoney(t, "-10.80", ret.Payments[0].Amount, "pago")

	assert.Equal(t, 9, f.stock(t, taza.ID))

	detail, err := f.uc.GetSale(f.ctx, ws, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusPartiallyRefunded, detail.Sale.Status)
	assert.Equal(t, 1, detail.Sale.Items[0].ReturnedQuantity)
	require.Len(t, detail.Returns, 1)
	assert.Equal(t, ret.ID, detail.Returns[0].ID)
}

func TestRefund_ProporcionalConDescuento(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "25", "10", 10)
	b := f.product(t, "B", "50", "20", 10)
	discount := d("10")
	res, err := f.uc.ProcessSale(f.ctx, sales.ProcessSaleCommand{
		WorkspaceID: ws,
		Items: []sales.SaleItemInput{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 1},
		},
		Discount: &discount,
		Payments: []entity.Payment{
			{Method: entity.PaymentMethodCash, Amount: d("20")},
			{Method: entity.PaymentMethodCard, Amount: d("77.20")},
		},
	})
	require.NoError(t, err)
	sale := res.Sale
	assertMoney(t, "97.20", sale.Total, "total venta")

	refund, err := f.uc.Refund(f.ctx, sales.RefundCommand{
		WorkspaceID: ws,
		SaleID:      sale.ID,
		Items:       []sales.RefundItemInput{{LineItemID: sale.Items[1].ID, Quantity: 1}},
	})
	require.NoError(t, err)
	ret := refund.Sale
	assertMoney(t, "-50", ret.Subtotal, "subtotal")
	assertMoney(t, "-5", ret.Discount, "descuento proporcional")
	assertMoney(t, "-3.60", ret.Tax, "impuesto proporcional")
	assertMoney(t, "-48.60", ret.Total, "total")
	assertMoney(t, "-25", ret.Profit, "utilidad")
	assert.Equal(t, entity.PaymentMethodCard, ret.Payments[0].Method, "método principal de la venta")
}

func TestRefund_RechazoNoDejaEfectos(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)
	sale := f.sell(t, taza, 2, "21.60")

	_, err := f.uc.Refund(f.ctx, sales.RefundCommand{
		WorkspaceID: ws,
		SaleID:      sale.ID,
		Items:       []sales.RefundItemInput{{LineItemID: sale.Items[0].ID, Quantity: 5}},
	})
	require.Error(t, err)
	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))

	assert.Len(t, f.transactions(t), 1)
	assert.Equal(t, 8, f.stock(t, taza.ID))
	stored, err := f.store.Sales().GetByID(f.ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCompleted, stored.Status)
	assert.Equal(t, 0, stored.Items[0].ReturnedQuantity)
}

func TestRefund_TotalYLuegoNadaPendiente(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)
	sale := f.sell(t, taza, 2, "21.60")

	res, err := f.uc.Refund(f.ctx, sales.RefundCommand{WorkspaceID: ws, SaleID: sale.ID})
	require.NoError(t, err)
	assertMoney(t, "-21.60", res.Sale.Total, "reembolso total")
	assert.Equal(t, 10, f.stock(t, taza.ID))

	stored, _ := f.store.Sales().GetByID(f.ctx, sale.ID)
	assert.Equal(t, entity.SaleStatusRefunded, stored.Status)

	_, err = f.uc.Refund(f.ctx, sales.RefundCommand{WorkspaceID: ws, SaleID: sale.ID})
	assert.ErrorIs(t, err, domain.ErrNothingToRefund)
}

func TestRefund_VentaDeOtroWorkspace(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)
	sale := f.sell(t, taza, 1, "10.80")

	_, err := f.uc.Refund(f.ctx, sales.RefundCommand{WorkspaceID: "ws-2", SaleID: sale.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcessSale_DevolucionPorProducto(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)
	sale := f.sell(t, taza, 2, "21.60")

	res, err := f.uc.ProcessSale(f.ctx, sales.ProcessSaleCommand{
		WorkspaceID:    ws,
		Type:           entity.SaleTypeReturn,
		OriginalSaleID: sale.ID,
		Items:          []sales.SaleItemInput{{ProductID: taza.ID, Quantity: -1}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleTypeReturn, res.Sale.Type)
	assertMoney(t, "-10.80", res.Sale.Total, "total")
	assert.Equal(t, sale.Items[0].ID, res.Sale.Items[0].OriginalLineID)
	assert.Equal(t, 9, f.stock(t, taza.ID))
}

func TestProcessSale_DevolucionSinVentaOriginal(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)

	_, err := f.uc.ProcessSale(f.ctx, sales.ProcessSaleCommand{
		WorkspaceID: ws,
		Type:        entity.SaleTypeReturn,
		Items:       []sales.SaleItemInput{{ProductID: taza.ID, Quantity: -1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRefund_EstadoMonotono(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)
	sale := f.sell(t, taza, 3, "32.40")
	line := sale.Items[0].ID

	var totals decimal.Decimal
	statuses := []string{}
	for i := 0; i < 3; i++ {
		res, err := f.uc.Refund(f.ctx, sales.RefundCommand{
			WorkspaceID: ws,
			SaleID:      sale.ID,
			Items:       []sales.RefundItemInput{{LineItemID: line, Quantity: 1}},
		})
		require.NoError(t, err)
		totals = totals.Add(res.Sale.Total)
		stored, _ := f.store.Sales().GetByID(f.ctx, sale.ID)
		statuses = append(statuses, stored.Status)
	}
	assert.Equal(t, []string{
		entity.SaleStatusPartiallyRefunded,
		entity.SaleStatusPartiallyRefunded,
		entity.SaleStatusRefunded,
	}, statuses)
	assert.True(t, totals.Add(sale.Total).IsZero(), "venta y devoluciones suman cero: %s", totals.Add(sale.Total))
}

// ──────────────────────────────────────────────────────────────────────────────
// DeleteSale
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteSale_CascadaSinTocarStock(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)
	sale := f.sell(t, taza, 2, "21.60")
	_, err := f.uc.Refund(f.ctx, sales.RefundCommand{
		WorkspaceID: ws,
		SaleID:      sale.ID,
		Items:       []sales.RefundItemInput{{LineItemID: sale.Items[0].ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, 9, f.stock(t, taza.ID))

	res, err := f.uc.DeleteSale(f.ctx, sales.DeleteSaleCommand{WorkspaceID: ws, Actor: cashier, SaleID: sale.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, res.DeletedReturnCount)
	assert.Equal(t, 2, res.DeletedAdjustmentCount)

	assert.Empty(t, f.transactions(t))
	assert.Equal(t, 9, f.stock(t, taza.ID), "el stock no se revierte")
	adjs := f.adjustments(t, taza.ID)
	require.Len(t, adjs, 1)
	assert.Equal(t, entity.AdjustmentReasonStockReceived, adjs[0].Reason)

	_, err = f.uc.DeleteSale(f.ctx, sales.DeleteSaleCommand{WorkspaceID: ws, SaleID: sale.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound, "eliminar dos veces")
}

func TestDeleteSale_DevolucionReconstruyeLaOriginal(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)
	sale := f.sell(t, taza, 2, "21.60")
	refund, err := f.uc.Refund(f.ctx, sales.RefundCommand{WorkspaceID: ws, SaleID: sale.ID})
	require.NoError(t, err)

	res, err := f.uc.DeleteSale(f.ctx, sales.DeleteSaleCommand{WorkspaceID: ws, SaleID: refund.Sale.ID})
	require.NoError(t, err)
	assert.Equal(t, sale.ID, res.ParentSaleID)
	assert.Equal(t, 0, res.DeletedReturnCount)
	assert.Equal(t, 1, res.DeletedAdjustmentCount)

	stored, err := f.store.Sales().GetByID(f.ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCompleted, stored.Status)
	assert.Equal(t, 0, stored.Items[0].ReturnedQuantity)
	assert.Equal(t, 10, f.stock(t, taza.ID), "el stock repuesto por la devolución se mantiene")

	// La venta vuelve a ser reembolsable
	_, err = f.uc.Refund(f.ctx, sales.RefundCommand{WorkspaceID: ws, SaleID: sale.ID})
	assert.NoError(t, err)
}

func TestDeleteSale_OtroWorkspace(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)
	sale := f.sell(t, taza, 1, "10.80")

	_, err := f.uc.DeleteSale(f.ctx, sales.DeleteSaleCommand{WorkspaceID: "ws-2", SaleID: sale.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, f.transactions(t), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestGetSale_ReconciliaUtilidadEnCero(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)
	sale := f.sell(t, taza, 2, "21.60")

	// Simula una fila importada sin utilidad calculada
	err := f.store.RunLedger(f.ctx, func(s repository.SaleRepository, _ repository.StockRepository, _ repository.InventoryAdjustmentRepository) error {
		stored, err := s.GetByID(f.ctx, sale.ID)
		if err != nil {
			return err
		}
		if err := s.Delete(f.ctx, sale.ID); err != nil {
			return err
		}
		stored.Profit = decimal.Zero
		return s.Create(f.ctx, stored)
	})
	require.NoError(t, err)

	detail, err := f.uc.GetSale(f.ctx, ws, sale.ID)
	require.NoError(t, err)
	assertMoney(t, "8", detail.Sale.Profit, "utilidad recalculada")
	require.Len(t, detail.Warnings, 1)
	assert.Equal(t, domain.WarningProfitRecomputed, detail.Warnings[0].Code)
}

func TestListSales_MasRecientesPrimero(t *testing.T) {
	f := newFixture(t)
	taza := f.product(t, "TAZA", "10", "6", 10)
	first := f.sell(t, taza, 1, "10.80")
	second := f.sell(t, taza, 1, "10.80")

	list, err := f.uc.ListSales(f.ctx, ws, nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}
