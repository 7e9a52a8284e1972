// Package report agrega ventas y devoluciones en vistas de solo lectura.
// Son funciones puras: recalculan desde las líneas en vez de confiar en agregados almacenados.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/money"
	"github.com/jhoicas/pos-ledger/internal/domain/sales"
)

// DateRange rango [From, To]; un extremo cero no limita.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains indica si t cae dentro del rango.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// ProductPerformance rendimiento de un producto (o variante) en el rango.
type ProductPerformance struct {
	ProductID string
	VariantID string
	Name      string
	SKU       string
	UnitsSold int
	Revenue   decimal.Decimal
	COGS      decimal.Decimal
	Profit    decimal.Decimal
}

// CustomerSummary gasto y utilidad acumulados de un cliente.
type CustomerSummary struct {
	CustomerID string
	Orders     int
	TotalSpent decimal.Decimal
	Profit     decimal.Decimal
	LastVisit  time.Time
}

// SellThrough tasa de venta: vendidas / (vendidas + stock actual).
type SellThrough struct {
	ProductID    string
	Name         string
	UnitsSold    int
	CurrentStock int
	Rate         decimal.Decimal
}

// Summary totales del rango, con las advertencias de las filas recalculadas.
type Summary struct {
	Transactions int
	Returns      int
	Revenue      decimal.Decimal
	Tax          decimal.Decimal
	Discount     decimal.Decimal
	COGS         decimal.Decimal
	Profit       decimal.Decimal
	Warnings     []domain.ConsistencyWarning
}

type productKey struct{ productID, variantID string }

// ProductPerformanceReport agrupa por producto/variante. El ingreso de cada línea es su subtotal
// menos la parte proporcional del descuento de la transacción; las devoluciones restan.
func ProductPerformanceReport(txs []*entity.Sale, r DateRange, p money.Precision) []ProductPerformance {
	acc := make(map[productKey]*ProductPerformance)
	var order []productKey
	for _, s := range txs {
		if !r.Contains(s.Date) {
			continue
		}
		for _, it := range s.Items {
			k := productKey{it.ProductID, it.VariantID}
			row, ok := acc[k]
			if !ok {
				row = &ProductPerformance{ProductID: it.ProductID, VariantID: it.VariantID, Name: it.Name, SKU: it.SKU}
				acc[k] = row
				order = append(order, k)
			}
			lineSubtotal := money.MulQty(it.UnitRetailPrice, it.Quantity)
			revenue := p.Round(lineSubtotal.Sub(allocate(s.Discount, lineSubtotal, s.Subtotal, p)))
			cogs := p.Round(money.MulQty(it.UnitCostPrice, it.Quantity))

			row.UnitsSold += it.Quantity
			row.Revenue = row.Revenue.Add(revenue)
			row.COGS = row.COGS.Add(cogs)
			row.Profit = row.Profit.Add(revenue.Sub(cogs))
		}
	}

	out := make([]ProductPerformance, 0, len(order))
	for _, k := range order {
		out = append(out, *acc[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// CustomerSummaryReport agrupa por cliente. Orders cuenta solo ventas; TotalSpent y Profit
// incluyen devoluciones. Las transacciones sin cliente se omiten.
func CustomerSummaryReport(txs []*entity.Sale, r DateRange, p money.Precision) []CustomerSummary {
	acc := make(map[string]*CustomerSummary)
	var order []string
	for _, s := range txs {
		if s.CustomerID == "" || !r.Contains(s.Date) {
			continue
		}
		row, ok := acc[s.CustomerID]
		if !ok {
			row = &CustomerSummary{CustomerID: s.CustomerID}
			acc[s.CustomerID] = row
			order = append(order, s.CustomerID)
		}
		if s.Type == entity.SaleTypeSale {
			row.Orders++
		}
		row.TotalSpent = row.TotalSpent.Add(s.Total)
		row.Profit = row.Profit.Add(sales.ReconcileProfit(s, p).Profit)
		if s.Date.After(row.LastVisit) {
			row.LastVisit = s.Date
		}
	}

	out := make([]CustomerSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *acc[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSpent.GreaterThan(out[j].TotalSpent)
	})
	return out
}

// SellThroughRate vendidas / (vendidas + stock). 0 si no hubo ventas netas o el denominador no es positivo.
func SellThroughRate(unitsSold, currentStock int) decimal.Decimal {
	if unitsSold <= 0 {
		return decimal.Zero
	}
	den := unitsSold + currentStock
	if den <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(unitsSold)).DivRound(decimal.NewFromInt(int64(den)), 4)
}

// SellThroughReport calcula la tasa por producto con el stock actual del catálogo.
// Las devoluciones del rango restan a las vendidas; un neto negativo (rango con solo
// devoluciones) cuenta como 0.
func SellThroughReport(txs []*entity.Sale, products []*entity.Product, r DateRange) []SellThrough {
	sold := make(map[string]int)
	for _, s := range txs {
		if !r.Contains(s.Date) {
			continue
		}
		for _, it := range s.Items {
			sold[it.ProductID] += it.Quantity
		}
	}
	out := make([]SellThrough, 0, len(products))
	for _, prod := range products {
		units := max(sold[prod.ID], 0)
		stock := prod.CurrentStock()
		out = append(out, SellThrough{
			ProductID:    prod.ID,
			Name:         prod.Name,
			UnitsSold:    units,
			CurrentStock: stock,
			Rate:         SellThroughRate(units, stock),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rate.GreaterThan(out[j].Rate)
	})
	return out
}

// Summarize totales del rango. La utilidad de cada fila pasa por sales.ReconcileProfit.
func Summarize(txs []*entity.Sale, r DateRange, p money.Precision) Summary {
	var sum Summary
	for _, s := range txs {
		if !r.Contains(s.Date) {
			continue
		}
		sum.Transactions++
		if s.IsReturn() {
			sum.Returns++
		}
		check := sales.ReconcileProfit(s, p)
		if check.Warning != nil {
			sum.Warnings = append(sum.Warnings, *check.Warning)
		}
		sum.Revenue = sum.Revenue.Add(s.Subtotal.Sub(s.Discount))
		sum.Tax = sum.Tax.Add(s.Tax)
		sum.Discount = sum.Discount.Add(s.Discount)
		sum.COGS = sum.COGS.Add(check.COGS)
		sum.Profit = sum.Profit.Add(check.Profit)
	}
	return sum
}

// allocate parte proporcional de amount según part/whole, conservando signos.
func allocate(amount, part, whole decimal.Decimal, p money.Precision) decimal.Decimal {
	if whole.IsZero() || amount.IsZero() {
		return decimal.Zero
	}
	return p.Round(amount.Mul(part).Div(whole))
}
