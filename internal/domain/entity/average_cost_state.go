package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AverageCostState es el estado del costeo promedio ponderado: una fila por
// (item, bodega). Solo las recepciones mueven el promedio; las salidas
// descuentan cantidad al promedio vigente.
// Invariantes: OnHandQty >= 0, AvgCost >= 0 (promedio 0 con cantidad 0).
type AverageCostState struct {
	ItemID      string
	WarehouseID string
	OnHandQty   decimal.Decimal
	AvgCost     decimal.Decimal
	UpdatedAt   time.Time
}
