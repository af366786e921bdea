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

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de la existencia materializada sobre
// PostgreSQL (usable con pool o tx). La fila del par es el ancla de bloqueo
// del motor.
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

// Get obtiene la existencia actual del par; sin fila devuelve cero.
func (r *StockLevelRepo) Get(itemID, warehouseID string) (*entity.StockLevel, error) {
	query := `
		SELECT item_id, warehouse_id, on_hand, updated_at
		FROM stock_levels WHERE item_id = $1 AND warehouse_id = $2`
	var l entity.StockLevel
	err := r.q.QueryRow(context.Background(), query, itemID, warehouseID).Scan(
		&l.ItemID, &l.WarehouseID, &l.OnHand, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{ItemID: itemID, WarehouseID: warehouseID, OnHand: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return &l, nil
}

// GetForUpdate bloquea la fila del par durante la transacción. Un SELECT FOR
// UPDATE sobre una fila inexistente no bloquea nada, así que primero se
// asegura la fila en cero con ON CONFLICT DO NOTHING y luego se toma el lock.
func (r *StockLevelRepo) GetForUpdate(itemID, warehouseID string) (*entity.StockLevel, error) {
	seed := `
		INSERT INTO stock_levels (item_id, warehouse_id, on_hand, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (item_id, warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(context.Background(), seed, itemID, warehouseID); err != nil {
		return nil, fmt.Errorf("seed stock level: %w", err)
	}

	query := `
		SELECT item_id, warehouse_id, on_hand, updated_at
		FROM stock_levels WHERE item_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	var l entity.StockLevel
	err := r.q.QueryRow(context.Background(), query, itemID, warehouseID).Scan(
		&l.ItemID, &l.WarehouseID, &l.OnHand, &l.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("lock stock level: %w", err)
	}
	return &l, nil
}

// Upsert inserta o actualiza la existencia del par.
func (r *StockLevelRepo) Upsert(level *entity.StockLevel) error {
	query := `
		INSERT INTO stock_levels (item_id, warehouse_id, on_hand, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (item_id, warehouse_id)
		DO UPDATE SET on_hand = EXCLUDED.on_hand, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		level.ItemID, level.WarehouseID, level.OnHand, level.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stock level: %w", err)
	}
	return nil
}
