package costing

import "github.com/shopspring/decimal"

// Escala fija del sistema para montos y cantidades (NUMERIC(18,4) en la BD).
// Se aplica en cada división (promedio ponderado, costo realizado) para que
// muchas salidas pequeñas no acumulen deriva.
const (
	CostScale = 4
	QtyScale  = 4
)

// RoundCost redondea un costo unitario a la escala del sistema (half-up).
func RoundCost(d decimal.Decimal) decimal.Decimal {
	return d.Round(CostScale)
}

// RoundQty redondea una cantidad a la escala del sistema (half-up).
func RoundQty(d decimal.Decimal) decimal.Decimal {
	return d.Round(QtyScale)
}
