package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostLayer es el estado FIFO: una recepción no consumida o parcialmente
// consumida. Se crea en la recepción, se decrementa en las salidas y nunca
// se borra (una capa con RemainingQty == 0 queda como historial de auditoría).
// Invariante: 0 <= RemainingQty <= OriginalQty.
type CostLayer struct {
	ID           string
	ItemID       string
	WarehouseID  string
	MoveID       string // movimiento IN que originó la capa
	OriginalQty  decimal.Decimal
	RemainingQty decimal.Decimal
	UnitCost     decimal.Decimal
	ReceivedAt   time.Time // orden de consumo: ReceivedAt asc, luego ID asc
}

// Consumed indica si la capa quedó totalmente consumida.
func (l *CostLayer) Consumed() bool {
	return l.RemainingQty.LessThanOrEqual(decimal.Zero)
}
