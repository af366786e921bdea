package repository

import "github.com/jhoicas/kardex-api/internal/domain/entity"

// StockLevelRepository define el puerto para la existencia materializada por
// bodega+item. Usado dentro de transacciones: la fila del par es el ancla de
// bloqueo que serializa recepciones y salidas concurrentes.
type StockLevelRepository interface {
	Get(itemID, warehouseID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE),
	// creándola en cero si aún no existe.
	GetForUpdate(itemID, warehouseID string) (*entity.StockLevel, error)
	Upsert(level *entity.StockLevel) error
}
