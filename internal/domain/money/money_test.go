package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-ledger/internal/domain/money"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRound_MitadSeAlejaDeCero(t *testing.T) {
	p := money.Fractional
	assert.True(t, d("0.13").Equal(p.Round(d("0.125"))))
	assert.True(t, d("-0.13").Equal(p.Round(d("-0.125"))))
	assert.True(t, d("3").Equal(money.Integer.Round(d("2.5"))))
}

func TestProportion_DenominadorCero(t *testing.T) {
	assert.True(t, money.Fractional.Proportion(d("50"), d("10"), decimal.Zero).IsZero())
	assert.True(t, money.Fractional.Proportion(d("50"), d("10"), d("-1")).IsZero())
}

func TestProportion_AsignacionProporcional(t *testing.T) {
	p := money.Fractional
	assert.True(t, d("5").Equal(p.Proportion(d("50"), d("10"), d("100"))))
	assert.True(t, d("3.6").Equal(p.Proportion(d("45"), d("7.2"), d("90"))))
	// 1/3 de 10 redondea a centavos
	assert.True(t, d("3.33").Equal(p.Proportion(d("10"), d("1"), d("3"))))
}

func TestEqual_ToleranciaPorPrecision(t *testing.T) {
	assert.True(t, money.Fractional.Equal(d("10.001"), d("10.00")))
	assert.False(t, money.Fractional.Equal(d("10.01"), d("10.00")))
	assert.True(t, money.Integer.Equal(d("10.4"), d("10")))
}

func TestMulQty_ConSigno(t *testing.T) {
	assert.True(t, d("-20").Equal(money.MulQty(d("10"), -2)))
	assert.True(t, d("30").Equal(money.Sum(d("10"), d("15"), d("5"))))
}

func TestPrecisionFor(t *testing.T) {
	assert.Equal(t, money.Integer, money.PrecisionFor(true))
	assert.Equal(t, money.Fractional, money.PrecisionFor(false))
}
