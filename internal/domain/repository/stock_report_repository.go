package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// BalanceRow saldo agregado de un par (item, bodega) con referencias resueltas.
type BalanceRow struct {
	SKU           string
	WarehouseCode string
	OnHand        decimal.Decimal
}

// LedgerMove un movimiento del libro con SKU y código de bodega resueltos
// (JOIN en la consulta, evita resoluciones fila a fila en la valorización).
type LedgerMove struct {
	Move          entity.StockMove
	SKU           string
	WarehouseCode string
}

// StockReportRepository define el puerto de solo lectura para los reportes.
// Los reportes nunca escriben en el libro ni en los trackers; cada consulta
// lee un snapshot consistente.
type StockReportRepository interface {
	// Balance suma con signo (+IN, -OUT) sobre el libro con moved_at <= asOf,
	// agrupado por par. asOf nil = ahora; itemID/warehouseID vacíos = sin filtro.
	Balance(asOf *time.Time, itemID, warehouseID string) ([]BalanceRow, error)
	// MovesUpTo devuelve los movimientos con moved_at <= asOf en orden de
	// reproducción (moved_at asc, id asc), para la valorización por replay.
	MovesUpTo(asOf *time.Time, itemID, warehouseID string) ([]LedgerMove, error)
}
