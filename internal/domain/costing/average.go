package costing

import "github.com/shopspring/decimal"

// NextAverage implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Con stock previo cero el resultado es el costo de la entrada. Redondeado a CostScale.
func NextAverage(onHand, avgCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	sum := onHand.Add(inQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := onHand.Mul(avgCost).Add(inQty.Mul(inCost))
	return RoundCost(num.Div(sum))
}
