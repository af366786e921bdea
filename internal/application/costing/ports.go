package costing

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza la atomicidad del motor: la entrada
// del libro y la mutación del tracker se confirman juntas o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		moveRepo repository.StockMoveRepository,
		layerRepo repository.CostLayerRepository,
		avgRepo repository.AverageCostRepository,
		levelRepo repository.StockLevelRepository,
	) error) error
}
