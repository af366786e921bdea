package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.AverageCostRepository = (*AverageCostRepo)(nil)

// AverageCostRepo implementación del estado de costo promedio sobre
// PostgreSQL (usable con pool o tx).
type AverageCostRepo struct {
	q Querier
}

// NewAverageCostRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAverageCostRepository(q Querier) *AverageCostRepo {
	return &AverageCostRepo{q: q}
}

// GetForUpdate bloquea la fila del par (SELECT FOR UPDATE). Sin fila previa
// devuelve estado en cero: la primera recepción parte de qty=0, avg=0.
// El bloqueo del par que protege el caso "sin fila" lo da el ancla en
// stock_levels, que el procesador toma antes de llegar aquí.
func (r *AverageCostRepo) GetForUpdate(itemID, warehouseID string) (*entity.AverageCostState, error) {
	query := `
		SELECT item_id, warehouse_id, onhand_qty, avg_cost, updated_at
		FROM avg_cost_states
		WHERE item_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	var s entity.AverageCostState
	err := r.q.QueryRow(context.Background(), query, itemID, warehouseID).Scan(
		&s.ItemID, &s.WarehouseID, &s.OnHandQty, &s.AvgCost, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.AverageCostState{
				ItemID: itemID, WarehouseID: warehouseID,
				OnHandQty: decimal.Zero, AvgCost: decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("get avg cost state: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza el estado del par.
func (r *AverageCostRepo) Upsert(state *entity.AverageCostState) error {
	query := `
		INSERT INTO avg_cost_states (item_id, warehouse_id, onhand_qty, avg_cost, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (item_id, warehouse_id)
		DO UPDATE SET onhand_qty = EXCLUDED.onhand_qty, avg_cost = EXCLUDED.avg_cost, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		state.ItemID, state.WarehouseID, state.OnHandQty, state.AvgCost, state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert avg cost state: %w", err)
	}
	return nil
}
