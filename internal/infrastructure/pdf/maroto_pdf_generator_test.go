package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/receipt"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

func TestMoneyFormatter(t *testing.T) {
	frac := moneyFormatter{}
	assert.Equal(t, "$25.000,00", frac.format(decimal.NewFromInt(25000)))
	assert.Equal(t, "-$1.234,50", frac.format(decimal.RequireFromString("-1234.5")))
	assert.Equal(t, "$0,80", frac.format(decimal.RequireFromString("0.8")))

	integer := moneyFormatter{integer: true}
	assert.Equal(t, "$1.000.000", integer.format(decimal.NewFromInt(1000000)))
	assert.Equal(t, "$200", integer.format(decimal.RequireFromString("199.5")))
}

func TestGenerateReceiptPDF(t *testing.T) {
	sale := &entity.Sale{
		ID: "S1", PublicID: "V-20240301-1A2B3C4D", Type: entity.SaleTypeSale,
		Date: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Items: []entity.LineItem{{
			Name: "Taza", SKU: "TAZA", UnitRetailPrice: decimal.NewFromInt(10), Quantity: 2,
		}},
		Subtotal: decimal.NewFromInt(20), Tax: decimal.RequireFromString("1.6"), Total: decimal.RequireFromString("21.6"),
		Payments:        []entity.Payment{{Method: entity.PaymentMethodCash, Amount: decimal.NewFromInt(25)}},
		ChangeDue:       decimal.RequireFromString("3.4"),
		SalespersonName: "Ana",
	}
	out, err := NewMarotoPDFGenerator().GenerateReceiptPDF(context.Background(), receipt.Data{StoreName: "Tienda", Sale: sale})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "el resultado debe ser un PDF")

	ret := sale.Clone()
	ret.Type = entity.SaleTypeReturn
	ret.PublicID = "D-20240302-9F9F9F9F"
	ret.OriginalSaleID = "S1"
	out, err = NewMarotoPDFGenerator().GenerateReceiptPDF(context.Background(), receipt.Data{Sale: ret, OriginalPublicID: sale.PublicID})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestGenerateReceiptPDF_SinVenta(t *testing.T) {
	_, err := NewMarotoPDFGenerator().GenerateReceiptPDF(context.Background(), receipt.Data{})
	assert.Error(t, err)
}
