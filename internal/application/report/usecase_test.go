package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/application/report"
	"github.com/jhoicas/pos-ledger/internal/application/sales"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/memory"
)

const ws = "ws-1"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// seed vende 2 tazas a un cliente y devuelve 1; stock final 9.
func seed(t *testing.T) (*memory.Store, *report.ReportUseCase, *entity.Product, *entity.Customer) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	settings := sales.StaticSettings{Value: entity.Settings{TaxRate: d("0.08")}}
	ledger := inventory.NewStockLedger(store, store.Products(), store.Adjustments(), zerolog.Nop())
	salesUC := sales.NewSalesUseCase(store, ledger, store.Sales(), store.Products(), store.Customers(), settings, nil, zerolog.Nop())

	taza := &entity.Product{WorkspaceID: ws, SKU: "TAZA", Name: "Taza", Price: d("10"), Cost: d("6")}
	require.NoError(t, store.Products().Create(ctx, taza))
	_, err := ledger.ReceiveStock(ctx, inventory.ReceiveStockCommand{WorkspaceID: ws, ProductID: taza.ID, Quantity: 10})
	require.NoError(t, err)

	ana := &entity.Customer{WorkspaceID: ws, Name: "Ana"}
	require.NoError(t, store.Customers().Create(ctx, ana))

	res, err := salesUC.ProcessSale(ctx, sales.ProcessSaleCommand{
		WorkspaceID: ws,
		Items:       []sales.SaleItemInput{{ProductID: taza.ID, Quantity: 2}},
		Payments:    []entity.Payment{{Method: entity.PaymentMethodCash, Amount: d("21.60")}},
		CustomerID:  ana.ID,
	})
	require.NoError(t, err)
	_, err = salesUC.Refund(ctx, sales.RefundCommand{
		WorkspaceID: ws,
		SaleID:      res.Sale.ID,
		Items:       []sales.RefundItemInput{{LineItemID: res.Sale.Items[0].ID, Quantity: 1}},
	})
	require.NoError(t, err)

	uc := report.NewReportUseCase(store.Sales(), store.Products(), store.Customers(), settings, zerolog.Nop())
	return store, uc, taza, ana
}

func TestReport_ProductPerformanceNetoDeDevoluciones(t *testing.T) {
	_, uc, taza, _ := seed(t)
	out, err := uc.ProductPerformance(context.Background(), ws, nil, nil)
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	row := out.Rows[0]
	assert.Equal(t, taza.ID, row.ProductID)
	assert.Equal(t, 1, row.UnitsSold)
	assert.True(t, d("10").Equal(row.Revenue), "ingreso: %s", row.Revenue)
	assert.True(t, d("6").Equal(row.COGS), "costo: %s", row.COGS)
	assert.True(t, d("4").Equal(row.Profit), "utilidad: %s", row.Profit)

	require.NotNil(t, out.Summary)
	assert.Equal(t, 2, out.Summary.Transactions)
	assert.Equal(t, 1, out.Summary.Returns)
	assert.True(t, d("0.80").Equal(out.Summary.Tax))
	assert.Empty(t, out.Warnings)
}

func TestReport_CustomerSummaryConNombre(t *testing.T) {
	_, uc, _, ana := seed(t)
	out, err := uc.CustomerSummary(context.Background(), ws, nil, nil)
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	row := out.Rows[0]
	assert.Equal(t, ana.ID, row.CustomerID)
	assert.Equal(t, "Ana", row.Name)
	assert.Equal(t, 1, row.Orders)
	assert.True(t, d("10.80").Equal(row.TotalSpent), "gasto: %s", row.TotalSpent)
	assert.True(t, d("4").Equal(row.Profit), "utilidad: %s", row.Profit)
}

func TestReport_SellThrough(t *testing.T) {
	_, uc, _, _ := seed(t)
	out, err := uc.SellThrough(context.Background(), ws, nil, nil)
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	// 1 / (1 + 9)
	assert.Equal(t, 1, out.Rows[0].UnitsSold)
	assert.Equal(t, 9, out.Rows[0].CurrentStock)
	assert.True(t, d("0.1").Equal(out.Rows[0].Rate))
}

func TestReport_RangoVacioYRangoInvalido(t *testing.T) {
	_, uc, _, _ := seed(t)
	ctx := context.Background()

	past := time.Now().Add(-48 * time.Hour)
	before := time.Now().Add(-24 * time.Hour)
	out, err := uc.ProductPerformance(ctx, ws, &past, &before)
	require.NoError(t, err)
	assert.Empty(t, out.Rows)

	_, err = uc.ProductPerformance(ctx, ws, &before, &past)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
