package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MoveTypeIN  = "IN"  // entrada (recepción)
	MoveTypeOUT = "OUT" // salida (despacho/consumo)
)

// StockMove es la entrada atómica e inmutable del libro de movimientos.
// Una vez escrita nunca se actualiza ni se borra; las correcciones se hacen
// con movimientos compensatorios. Solo el procesador de movimientos la crea.
type StockMove struct {
	ID          string
	Type        string          // IN | OUT
	ItemID      string
	WarehouseID string          // destino en IN, origen en OUT
	Quantity    decimal.Decimal // siempre positiva; el signo lo da Type
	UnitCost    decimal.Decimal // obligatorio en IN; en OUT es el costo realizado
	TotalCost   decimal.Decimal
	MovedAt     time.Time
	Reference   string // documento de referencia (GR-..., SO-...)
	Note        string
	Lot         string // marcador de lote opcional
	CreatedAt   time.Time
}
