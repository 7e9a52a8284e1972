package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/pkg/config"
)

// ─── Helpers ─────────────────────────────────────────────────────────────────

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/x?sslmode=disable", migrateURL("postgres://u:p@db:5432/x?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/x", migrateURL("postgresql://u@db/x"))
	assert.Equal(t, "pgx5://ya", migrateURL("pgx5://ya"))
}

func TestLimitYOffset(t *testing.T) {
	assert.Nil(t, limitArg(0))
	assert.Nil(t, limitArg(-3))
	require.NotNil(t, limitArg(10))
	assert.Equal(t, 10, *limitArg(10))
	assert.Equal(t, 0, offsetArg(-1))
	assert.Nil(t, nullableText(""))
	assert.Equal(t, "k", *nullableText("k"))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("otro")))
}

// ─── Integración (requiere POSTGRES_TEST_URL) ────────────────────────────────

func testRunner(t *testing.T) (*TxRunner, Querier) {
	t.Helper()
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL no definido")
	}
	require.NoError(t, Migrate(url, zerolog.Nop()))
	pool, err := NewPool(context.Background(), config.DBConfig{DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewTxRunner(pool), pool
}

func TestIntegracion_VentaConLineasPagosYRollback(t *testing.T) {
	runner, pool := testRunner(t)
	ctx := context.Background()
	ws := "ws-" + uuid.New().String()
	now := time.Now().UTC().Truncate(time.Microsecond)

	products := NewProductRepository(pool)
	p := &entity.Product{
		WorkspaceID: ws, SKU: "CAFE", Name: "Café",
		Price: decimal.RequireFromString("10"), Cost: decimal.RequireFromString("6"),
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, products.Create(ctx, p))
	assert.ErrorIs(t, products.Create(ctx, &entity.Product{WorkspaceID: ws, SKU: "CAFE", Name: "x"}), domain.ErrDuplicate)

	sale := &entity.Sale{
		ID: uuid.New().String(), PublicID: "V-TEST", WorkspaceID: ws, Date: now,
		Type: entity.SaleTypeSale, Status: entity.SaleStatusCompleted,
		Items: []entity.LineItem{{
			ProductID: p.ID, Name: "Café", SKU: "CAFE",
			UnitRetailPrice: p.Price, UnitCostPrice: p.Cost, Quantity: 2,
		}},
		Subtotal: decimal.RequireFromString("20"), Total: decimal.RequireFromString("20"),
		COGS: decimal.RequireFromString("12"), Profit: decimal.RequireFromString("8"),
		Payments:       []entity.Payment{{Method: entity.PaymentMethodCash, Amount: decimal.RequireFromString("20")}},
		IdempotencyKey: "k-1", CreatedAt: now, UpdatedAt: now,
	}
	err := runner.RunLedger(ctx, func(s repository.SaleRepository, st repository.StockRepository, a repository.InventoryAdjustmentRepository) error {
		if err := s.Create(ctx, sale); err != nil {
			return err
		}
		if err := st.Upsert(ctx, &entity.StockLevel{ProductID: p.ID, Quantity: -2, UpdatedAt: now}); err != nil {
			return err
		}
		return a.Create(ctx, &entity.InventoryAdjustment{
			WorkspaceID: ws, ProductID: p.ID, Date: now, QuantityDelta: -2,
			Reason: entity.AdjustmentReasonSale, TransactionID: sale.ID, StockAfter: -2,
		})
	})
	require.NoError(t, err)

	got, err := NewSaleRepository(pool).GetByID(ctx, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Items, 1)
	require.Len(t, got.Payments, 1)
	assert.True(t, decimal.RequireFromString("8").Equal(got.Profit))
	assert.Equal(t, "k-1", got.IdempotencyKey)

	// Clave repetida en el mismo workspace
	dup := *sale
	dup.ID = uuid.New().String()
	dup.Items = nil
	dup.Payments = nil
	assert.ErrorIs(t, NewSaleRepository(pool).Create(ctx, &dup), domain.ErrDuplicate)

	byKey, err := NewSaleRepository(pool).GetByIdempotencyKey(ctx, sale.WorkspaceID, "k-1")
	require.NoError(t, err)
	require.NotNil(t, byKey)
	assert.Equal(t, sale.ID, byKey.ID)
	require.Len(t, byKey.Items, 1)

	// Rollback: nada de lo escrito en la tx queda
	boom := errors.New("boom")
	err = runner.RunLedger(ctx, func(_ repository.SaleRepository, st repository.StockRepository, _ repository.InventoryAdjustmentRepository) error {
		require.NoError(t, st.Upsert(ctx, &entity.StockLevel{ProductID: p.ID, Quantity: 100, UpdatedAt: now}))
		return boom
	})
	require.ErrorIs(t, err, boom)
	lvl, err := NewStockRepository(pool).Get(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, -2, lvl.Quantity)

	// Cascada de borrado
	n, err := NewAdjustmentRepository(pool).DeleteByTransactions(ctx, []string{sale.ID, ""})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, NewSaleRepository(pool).Delete(ctx, sale.ID))
	assert.ErrorIs(t, NewSaleRepository(pool).Delete(ctx, sale.ID), domain.ErrNotFound)
}
