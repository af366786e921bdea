package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.StockReportRepository = (*ReportRepo)(nil)

// ReportRepo lecturas agregadas del libro para los reportes de saldo y
// valorización. Solo SELECT; nunca escribe.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// Balance suma con signo (+IN, -OUT) hasta asOf, agrupado por par con SKU y
// código de bodega resueltos en la misma consulta (snapshot consistente).
func (r *ReportRepo) Balance(asOf *time.Time, itemID, warehouseID string) ([]repository.BalanceRow, error) {
	query := `
		SELECT i.sku, w.code,
		       COALESCE(SUM(CASE WHEN m.move_type = 'IN' THEN m.quantity ELSE -m.quantity END), 0) AS on_hand
		FROM stock_moves m
		JOIN items i ON i.id = m.item_id
		JOIN warehouses w ON w.id = m.warehouse_id`
	where, args := reportFilters(asOf, itemID, warehouseID)
	query += where + `
		GROUP BY i.sku, w.code
		ORDER BY i.sku, w.code`

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("balance report: %w", err)
	}
	defer rows.Close()
	var list []repository.BalanceRow
	for rows.Next() {
		var row repository.BalanceRow
		if err := rows.Scan(&row.SKU, &row.WarehouseCode, &row.OnHand); err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

// MovesUpTo devuelve los movimientos hasta asOf en orden de reproducción
// (moved_at asc, id asc) con referencias resueltas, para el replay de la
// valorización histórica.
func (r *ReportRepo) MovesUpTo(asOf *time.Time, itemID, warehouseID string) ([]repository.LedgerMove, error) {
	query := `
		SELECT m.id, m.move_type, m.item_id, m.warehouse_id, m.quantity, m.unit_cost, m.total_cost,
		       m.moved_at, m.reference, m.note, m.lot, m.created_at, i.sku, w.code
		FROM stock_moves m
		JOIN items i ON i.id = m.item_id
		JOIN warehouses w ON w.id = m.warehouse_id`
	where, args := reportFilters(asOf, itemID, warehouseID)
	query += where + `
		ORDER BY m.moved_at ASC, m.id ASC`

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("moves up to: %w", err)
	}
	defer rows.Close()
	var list []repository.LedgerMove
	for rows.Next() {
		var lm repository.LedgerMove
		var note, lot *string
		if err := rows.Scan(&lm.Move.ID, &lm.Move.Type, &lm.Move.ItemID, &lm.Move.WarehouseID,
			&lm.Move.Quantity, &lm.Move.UnitCost, &lm.Move.TotalCost,
			&lm.Move.MovedAt, &lm.Move.Reference, &note, &lot, &lm.Move.CreatedAt,
			&lm.SKU, &lm.WarehouseCode); err != nil {
			return nil, fmt.Errorf("scan ledger move: %w", err)
		}
		if note != nil {
			lm.Move.Note = *note
		}
		if lot != nil {
			lm.Move.Lot = *lot
		}
		list = append(list, lm)
	}
	return list, rows.Err()
}

// reportFilters arma el WHERE común de los reportes.
func reportFilters(asOf *time.Time, itemID, warehouseID string) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	pos := 1
	if asOf != nil {
		where += fmt.Sprintf(" AND m.moved_at <= $%d", pos)
		args = append(args, *asOf)
		pos++
	}
	if itemID != "" {
		where += fmt.Sprintf(" AND m.item_id = $%d", pos)
		args = append(args, itemID)
		pos++
	}
	if warehouseID != "" {
		where += fmt.Sprintf(" AND m.warehouse_id = $%d", pos)
		args = append(args, warehouseID)
	}
	return where, args
}
