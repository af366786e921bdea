package repository

import (
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// StockMoveRepository define el puerto de persistencia del libro de movimientos.
// El libro es append-only: solo Create escribe; no existe Update ni Delete.
type StockMoveRepository interface {
	Create(move *entity.StockMove) error
	GetByID(id string) (*entity.StockMove, error)
	// ListCard lista los movimientos de un item (kardex), opcionalmente
	// filtrados por bodega y rango de fechas, en orden cronológico.
	ListCard(itemID, warehouseID string, from, to *time.Time, limit int) ([]*entity.StockMove, error)
}
