package repository

import "github.com/jhoicas/kardex-api/internal/domain/entity"

// AverageCostRepository define el puerto de persistencia del estado de costo
// promedio ponderado (una fila por item+bodega).
type AverageCostRepository interface {
	// GetForUpdate bloquea la fila del par (SELECT FOR UPDATE). Si no existe
	// devuelve un estado en cero listo para la primera recepción.
	GetForUpdate(itemID, warehouseID string) (*entity.AverageCostState, error)
	Upsert(state *entity.AverageCostState) error
}
