package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.StockMoveRepository = (*StockMoveRepo)(nil)

// StockMoveRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). La tabla stock_moves es append-only: este adaptador
// no expone UPDATE ni DELETE.
type StockMoveRepo struct {
	q Querier
}

// NewStockMoveRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMoveRepository(q Querier) *StockMoveRepo {
	return &StockMoveRepo{q: q}
}

// Create persiste una entrada del libro.
func (r *StockMoveRepo) Create(move *entity.StockMove) error {
	if move.ID == "" {
		move.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_moves (id, move_type, item_id, warehouse_id, quantity, unit_cost, total_cost, moved_at, reference, note, lot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		move.ID, move.Type, move.ItemID, move.WarehouseID,
		move.Quantity, move.UnitCost, move.TotalCost,
		move.MovedAt, move.Reference, nullable(move.Note), nullable(move.Lot), move.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock move: %w", err)
	}
	return nil
}

// GetByID obtiene una entrada del libro por ID.
func (r *StockMoveRepo) GetByID(id string) (*entity.StockMove, error) {
	query := selectMove + ` WHERE id = $1`
	m, err := scanMove(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock move: %w", err)
	}
	return m, nil
}

// ListCard lista los movimientos de un item (kardex) en orden cronológico,
// opcionalmente filtrados por bodega y rango de fechas.
func (r *StockMoveRepo) ListCard(itemID, warehouseID string, from, to *time.Time, limit int) ([]*entity.StockMove, error) {
	query := selectMove + ` WHERE item_id = $1`
	args := []any{itemID}
	pos := 2
	if warehouseID != "" {
		query += fmt.Sprintf(" AND warehouse_id = $%d", pos)
		args = append(args, warehouseID)
		pos++
	}
	if from != nil {
		query += fmt.Sprintf(" AND moved_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND moved_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY moved_at ASC, id ASC LIMIT $%d", pos)
	args = append(args, limit)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock card: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMove
	for rows.Next() {
		m, err := scanMove(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock move: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

const selectMove = `
	SELECT id, move_type, item_id, warehouse_id, quantity, unit_cost, total_cost, moved_at, reference, note, lot, created_at
	FROM stock_moves`

func scanMove(row pgx.Row) (*entity.StockMove, error) {
	var m entity.StockMove
	var note, lot *string
	err := row.Scan(&m.ID, &m.Type, &m.ItemID, &m.WarehouseID,
		&m.Quantity, &m.UnitCost, &m.TotalCost, &m.MovedAt, &m.Reference, &note, &lot, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if note != nil {
		m.Note = *note
	}
	if lot != nil {
		m.Lot = *lot
	}
	return &m, nil
}

// nullable convierte "" en NULL para columnas opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
