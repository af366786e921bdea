package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel es la existencia materializada por (item, bodega). Además de
// servir consultas rápidas es el ancla de bloqueo por par: toda recepción o
// salida toma esta fila con SELECT FOR UPDATE durante su transacción, de modo
// que dos escritores sobre el mismo par nunca corren en paralelo.
// Siempre reconstruible desde el libro de movimientos.
type StockLevel struct {
	ItemID      string
	WarehouseID string
	OnHand      decimal.Decimal
	UpdatedAt   time.Time
}
