package config_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.True(t, cfg.Sales.TaxRate.IsZero())
	assert.Equal(t, 24*time.Hour, cfg.Sales.IdempotencyTTL)
	assert.True(t, cfg.Redis.AllowFallback)
}

func TestLoad_ParametrosDeVenta(t *testing.T) {
	t.Setenv("SALES_TAX_RATE", "0.08")
	t.Setenv("SALES_DISCOUNT_RATE", "0.10")
	t.Setenv("SALES_DISCOUNT_THRESHOLD", "100")
	t.Setenv("SALES_INTEGER_CURRENCY", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.08").Equal(cfg.Sales.TaxRate))
	assert.True(t, decimal.RequireFromString("100").Equal(cfg.Sales.DiscountThreshold))
	assert.True(t, cfg.Sales.IntegerCurrency)
}

func TestLoad_TasaInvalida(t *testing.T) {
	t.Setenv("SALES_TAX_RATE", "8")
	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("SALES_TAX_RATE", "ocho")
	_, err = config.Load()
	assert.Error(t, err)
}

func TestLoad_ProduccionExigeSecreto(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "pos", Password: "p@ss:word", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://pos:p%40ss%3Aword@db:5432/ledger?sslmode=disable", c.DSN())
	assert.True(t, c.Enabled())
	assert.False(t, config.DBConfig{}.Enabled())
}
