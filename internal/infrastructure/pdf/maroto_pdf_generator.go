// Package pdf genera el comprobante de venta o devolución con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tienda               │  Tipo + N° + Fecha           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  Vendedor / Cliente / Venta original                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Subtotal               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Descuento / Impuesto / TOTAL            │
//	│  PAGOS: método y monto, vuelto                               │
//	│  FOOTER: QR con el número del comprobante                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/application/receipt"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorReturn  = &props.Color{Red: 160, Green: 40, Blue: 40}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var paymentLabels = map[string]string{
	entity.PaymentMethodCash:  "Efectivo",
	entity.PaymentMethodCard:  "Tarjeta",
	entity.PaymentMethodOther: "Otro",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa receipt.Generator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

var _ receipt.Generator = (*MarotoPDFGenerator)(nil)

// GenerateReceiptPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateReceiptPDF(_ context.Context, data receipt.Data) ([]byte, error) {
	if data.Sale == nil {
		return nil, fmt.Errorf("pdf: comprobante sin transacción")
	}
	sale := data.Sale
	f := moneyFormatter{integer: data.IntegerCurrency}
	accent := colorPrimary
	if sale.IsReturn() {
		accent = colorReturn
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(documentTitle(sale), true).
		WithAuthor(nonEmpty(data.StoreName, "POS"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data, accent))
	m.AddRows(line.NewRow(1, props.Line{Color: accent, Thickness: 0.5}))
	m.AddRows(partiesRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: accent, Thickness: 0.3}))

	m.AddRows(tableHeaderRow(accent))
	for _, r := range tableDetailRows(sale.Items, f) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: accent, Thickness: 0.3}))
	m.AddRows(totalsRow(sale, f, accent))
	m.AddRows(paymentRows(sale, f)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func documentTitle(sale *entity.Sale) string {
	if sale.IsReturn() {
		return "NOTA DE DEVOLUCIÓN"
	}
	return "COMPROBANTE DE VENTA"
}

// headerRow: tienda (izq) y tipo + número + fecha (der).
func headerRow(data receipt.Data, accent *props.Color) core.Row {
	sale := data.Sale
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(data.StoreName, "Punto de venta"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: accent, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New(documentTitle(sale), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: accent, Top: 1,
			}),
			text.New(sale.PublicID, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+sale.Date.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// partiesRow: vendedor, cliente y venta original.
func partiesRow(data receipt.Data) core.Row {
	sale := data.Sale
	customer := "Consumidor final"
	if data.Customer != nil {
		customer = data.Customer.Name
		if data.Customer.Phone != "" {
			customer += "  |  Tel: " + data.Customer.Phone
		}
	}
	details := fmt.Sprintf("Vendedor: %s   |   Cliente: %s", nonEmpty(sale.SalespersonName, "—"), customer)
	if sale.IsReturn() {
		details += "   |   Venta original: " + nonEmpty(data.OriginalPublicID, sale.OriginalSaleID)
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New(details, props.Text{Size: 8, Top: 3, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow(accent *props.Color) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: accent})
}

// tableDetailRows: una fila por línea.
func tableDetailRows(items []entity.LineItem, f moneyFormatter) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		desc := it.Name
		if it.SKU != "" {
			desc += " (" + it.SKU + ")"
		}
		subtotal := it.UnitRetailPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(desc, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(f.format(it.UnitRetailPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(f.format(subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(sale *entity.Sale, f moneyFormatter, accent *props.Color) core.Row {
	labels := []string{"Subtotal:", "Descuento:", "Impuesto:"}
	values := []decimal.Decimal{sale.Subtotal, sale.Discount.Neg(), sale.Tax}
	grand := "TOTAL:"
	if sale.IsReturn() {
		grand = "TOTAL DEVUELTO:"
	}

	labelCol := col.New(3)
	valueCol := col.New(3)
	for i := range labels {
		top := float64(i * 5)
		labelCol = labelCol.Add(text.New(labels[i], props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top}))
		valueCol = valueCol.Add(text.New(f.format(values[i]), props.Text{Size: 9, Align: align.Right, Right: 1, Top: top}))
	}
	labelCol = labelCol.Add(text.New(grand, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: accent, Right: 2, Top: 16}))
	valueCol = valueCol.Add(text.New(f.format(sale.Total), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: accent, Right: 1, Top: 16}))

	return row.New(24).Add(col.New(6), labelCol, valueCol)
}

// paymentRows: un renglón por pago y el vuelto si lo hay.
func paymentRows(sale *entity.Sale, f moneyFormatter) []core.Row {
	rows := make([]core.Row, 0, len(sale.Payments)+1)
	for _, p := range sale.Payments {
		rows = append(rows, row.New(5).Add(
			col.New(6),
			col.New(3).Add(text.New(nonEmpty(paymentLabels[p.Method], p.Method)+":", props.Text{Size: 8, Align: align.Right, Right: 2, Color: colorGray})),
			col.New(3).Add(text.New(f.format(p.Amount), props.Text{Size: 8, Align: align.Right, Right: 1, Color: colorGray})),
		))
	}
	if sale.ChangeDue.IsPositive() {
		rows = append(rows, row.New(5).Add(
			col.New(6),
			col.New(3).Add(text.New("Vuelto:", props.Text{Size: 8, Align: align.Right, Right: 2})),
			col.New(3).Add(text.New(f.format(sale.ChangeDue), props.Text{Size: 8, Align: align.Right, Right: 1})),
		))
	}
	return rows
}

// footerRow: QR con el número del comprobante y la nota.
func footerRow(sale *entity.Sale) core.Row {
	note := "Gracias por su compra."
	if sale.IsReturn() {
		note = "Conserve este comprobante como soporte de la devolución."
	}
	if sale.Note != "" {
		note = sale.Note + "\n" + note
	}
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(sale.PublicID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(text.New(note, props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// moneyFormatter formatea montos con puntos de miles y coma decimal.
// Ej: 25000 → "$25.000", -1234.5 → "-$1.234,50".
type moneyFormatter struct{ integer bool }

func (f moneyFormatter) format(d decimal.Decimal) string {
	places := int32(2)
	if f.integer {
		places = 0
	}
	s := d.Abs().StringFixed(places)
	intPart, frac, _ := strings.Cut(s, ".")
	out := "$" + groupThousands(intPart)
	if frac != "" {
		out += "," + frac
	}
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}

// groupThousands inserta puntos de miles en un string numérico sin signo.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
