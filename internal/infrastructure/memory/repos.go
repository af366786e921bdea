package memory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// Repositorios de lectura/catálogo fuera de transacción.

type ItemRepo struct{ s *Store }

var _ repository.ItemRepository = (*ItemRepo)(nil)

// NewItemRepository construye el adaptador de items sobre el store.
func NewItemRepository(s *Store) *ItemRepo { return &ItemRepo{s: s} }

func (r *ItemRepo) Create(item *entity.Item) error {
	return r.s.AddItem(item)
}

func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if it, ok := r.s.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (r *ItemRepo) GetBySKU(sku string) (*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if id, ok := r.s.itemsBySKU[sku]; ok {
		cp := *r.s.items[id]
		return &cp, nil
	}
	return nil, nil
}

func (r *ItemRepo) List(limit, offset int) ([]*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*entity.Item, 0, len(r.s.items))
	for _, it := range r.s.items {
		cp := *it
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })
	return page(all, limit, offset), nil
}

type WarehouseRepo struct{ s *Store }

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// NewWarehouseRepository construye el adaptador de bodegas sobre el store.
func NewWarehouseRepository(s *Store) *WarehouseRepo { return &WarehouseRepo{s: s} }

func (r *WarehouseRepo) Create(wh *entity.Warehouse) error {
	return r.s.AddWarehouse(wh)
}

func (r *WarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if wh, ok := r.s.warehouses[id]; ok {
		cp := *wh
		return &cp, nil
	}
	return nil, nil
}

func (r *WarehouseRepo) GetByCode(code string) (*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if id, ok := r.s.whByCode[code]; ok {
		cp := *r.s.warehouses[id]
		return &cp, nil
	}
	return nil, nil
}

func (r *WarehouseRepo) List(limit, offset int) ([]*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*entity.Warehouse, 0, len(r.s.warehouses))
	for _, wh := range r.s.warehouses {
		cp := *wh
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return page(all, limit, offset), nil
}

// MoveRepo lecturas del libro fuera de transacción (kardex).
type MoveRepo struct{ s *Store }

var _ repository.StockMoveRepository = (*MoveRepo)(nil)

// NewStockMoveRepository construye el adaptador de movimientos sobre el store.
func NewStockMoveRepository(s *Store) *MoveRepo { return &MoveRepo{s: s} }

func (r *MoveRepo) Create(move *entity.StockMove) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *move
	r.s.moves = append(r.s.moves, &cp)
	return nil
}

func (r *MoveRepo) GetByID(id string) (*entity.StockMove, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.moves {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MoveRepo) ListCard(itemID, warehouseID string, from, to *time.Time, limit int) ([]*entity.StockMove, error) {
	return listCard(r.s, itemID, warehouseID, from, to, limit), nil
}

func listCard(s *Store, itemID, warehouseID string, from, to *time.Time, limit int) []*entity.StockMove {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.StockMove
	for _, m := range s.moves {
		if m.ItemID != itemID {
			continue
		}
		if warehouseID != "" && m.WarehouseID != warehouseID {
			continue
		}
		if from != nil && m.MovedAt.Before(*from) {
			continue
		}
		if to != nil && m.MovedAt.After(*to) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sortMoves(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ReportRepo lecturas agregadas del libro para los reportes.
type ReportRepo struct{ s *Store }

var _ repository.StockReportRepository = (*ReportRepo)(nil)

// NewReportRepository construye el adaptador de reportes sobre el store.
func NewReportRepository(s *Store) *ReportRepo { return &ReportRepo{s: s} }

func (r *ReportRepo) Balance(asOf *time.Time, itemID, warehouseID string) ([]repository.BalanceRow, error) {
	ledger, err := r.MovesUpTo(asOf, itemID, warehouseID)
	if err != nil {
		return nil, err
	}
	type agg struct {
		sku, code string
		onHand    decimal.Decimal
	}
	sums := make(map[pairKey]*agg)
	for _, lm := range ledger {
		key := pairKey{lm.Move.ItemID, lm.Move.WarehouseID}
		a, ok := sums[key]
		if !ok {
			a = &agg{sku: lm.SKU, code: lm.WarehouseCode, onHand: decimal.Zero}
			sums[key] = a
		}
		if lm.Move.Type == entity.MoveTypeIN {
			a.onHand = a.onHand.Add(lm.Move.Quantity)
		} else {
			a.onHand = a.onHand.Sub(lm.Move.Quantity)
		}
	}
	rows := make([]repository.BalanceRow, 0, len(sums))
	for _, a := range sums {
		rows = append(rows, repository.BalanceRow{SKU: a.sku, WarehouseCode: a.code, OnHand: a.onHand})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SKU == rows[j].SKU {
			return rows[i].WarehouseCode < rows[j].WarehouseCode
		}
		return rows[i].SKU < rows[j].SKU
	})
	return rows, nil
}

func (r *ReportRepo) MovesUpTo(asOf *time.Time, itemID, warehouseID string) ([]repository.LedgerMove, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []repository.LedgerMove
	for _, m := range r.s.moves {
		if asOf != nil && m.MovedAt.After(*asOf) {
			continue
		}
		if itemID != "" && m.ItemID != itemID {
			continue
		}
		if warehouseID != "" && m.WarehouseID != warehouseID {
			continue
		}
		sku := ""
		if it, ok := r.s.items[m.ItemID]; ok {
			sku = it.SKU
		}
		code := ""
		if wh, ok := r.s.warehouses[m.WarehouseID]; ok {
			code = wh.Code
		}
		out = append(out, repository.LedgerMove{Move: *m, SKU: sku, WarehouseCode: code})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Move.MovedAt.Equal(out[j].Move.MovedAt) {
			return out[i].Move.ID < out[j].Move.ID
		}
		return out[i].Move.MovedAt.Before(out[j].Move.MovedAt)
	})
	return out, nil
}

func sortMoves(moves []*entity.StockMove) {
	sort.SliceStable(moves, func(i, j int) bool {
		if moves[i].MovedAt.Equal(moves[j].MovedAt) {
			return moves[i].ID < moves[j].ID
		}
		return moves[i].MovedAt.Before(moves[j].MovedAt)
	})
}

func page[T any](all []*T, limit, offset int) []*T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}
