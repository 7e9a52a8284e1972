package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost costo promedio ponderado tras una entrada de mercancía.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Con stock actual negativo o nulo la entrada fija el costo.
func WeightedAverageCost(currentStock int, currentCost decimal.Decimal, receivedQty int, receivedCost decimal.Decimal) decimal.Decimal {
	if receivedQty <= 0 {
		return currentCost
	}
	if currentStock <= 0 {
		return receivedCost
	}
	stock := decimal.NewFromInt(int64(currentStock))
	qty := decimal.NewFromInt(int64(receivedQty))
	num := stock.Mul(currentCost).Add(qty.Mul(receivedCost))
	return num.DivRound(stock.Add(qty), 4)
}
