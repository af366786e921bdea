package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.CostLayerRepository = (*CostLayerRepo)(nil)

// CostLayerRepo implementación de las capas FIFO sobre PostgreSQL (usable con
// pool o tx). Las capas solo se crean y se decrementan; nunca se borran.
type CostLayerRepo struct {
	q Querier
}

// NewCostLayerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCostLayerRepository(q Querier) *CostLayerRepo {
	return &CostLayerRepo{q: q}
}

// Create persiste una capa nueva (recepción bajo FIFO).
func (r *CostLayerRepo) Create(layer *entity.CostLayer) error {
	if layer.ID == "" {
		layer.ID = uuid.New().String()
	}
	query := `
		INSERT INTO cost_layers (id, item_id, warehouse_id, move_id, original_qty, remaining_qty, unit_cost, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		layer.ID, layer.ItemID, layer.WarehouseID, layer.MoveID,
		layer.OriginalQty, layer.RemainingQty, layer.UnitCost, layer.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("create cost layer: %w", err)
	}
	return nil
}

// ListOpenForUpdate devuelve las capas con remanente del par, en orden de
// consumo, bloqueadas para la transacción (SELECT FOR UPDATE).
func (r *CostLayerRepo) ListOpenForUpdate(itemID, warehouseID string) ([]*entity.CostLayer, error) {
	query := `
		SELECT id, item_id, warehouse_id, move_id, original_qty, remaining_qty, unit_cost, received_at
		FROM cost_layers
		WHERE item_id = $1 AND warehouse_id = $2 AND remaining_qty > 0
		ORDER BY received_at ASC, id ASC
		FOR UPDATE`
	rows, err := r.q.Query(context.Background(), query, itemID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list open layers: %w", err)
	}
	defer rows.Close()
	var list []*entity.CostLayer
	for rows.Next() {
		var l entity.CostLayer
		if err := rows.Scan(&l.ID, &l.ItemID, &l.WarehouseID, &l.MoveID,
			&l.OriginalQty, &l.RemainingQty, &l.UnitCost, &l.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan cost layer: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// UpdateRemaining fija el remanente de una capa tras consumirla.
func (r *CostLayerRepo) UpdateRemaining(layerID string, remaining decimal.Decimal) error {
	query := `UPDATE cost_layers SET remaining_qty = $2 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, layerID, remaining)
	if err != nil {
		return fmt.Errorf("update layer remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update layer remaining: capa %s no existe", layerID)
	}
	return nil
}
