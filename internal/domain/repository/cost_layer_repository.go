package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// CostLayerRepository define el puerto de persistencia de las capas FIFO.
// Las capas se crean y se decrementan; nunca se borran (historial de auditoría).
type CostLayerRepository interface {
	Create(layer *entity.CostLayer) error
	// ListOpenForUpdate devuelve las capas con remanente > 0 del par en orden
	// de consumo (received_at asc, id asc), bloqueadas para la transacción.
	ListOpenForUpdate(itemID, warehouseID string) ([]*entity.CostLayer, error)
	UpdateRemaining(layerID string, remaining decimal.Decimal) error
}
