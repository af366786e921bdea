package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/costing"
	domaincosting "github.com/jhoicas/kardex-api/internal/domain/costing"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ costing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks con semántica transaccional sobre el Store:
// las escrituras se acumulan en un staging y se aplican todas juntas solo si
// el callback termina sin error. Los mutex por par quedan tomados hasta
// después del commit, igual que un SELECT FOR UPDATE hasta el COMMIT.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repositorios atados a la transacción y aplica o descarta
// el staging según el resultado.
func (r *TxRunner) Run(ctx context.Context, fn func(
	moveRepo repository.StockMoveRepository,
	layerRepo repository.CostLayerRepository,
	avgRepo repository.AverageCostRepository,
	levelRepo repository.StockLevelRepository,
) error) error {
	t := &tx{
		s:            r.s,
		locked:       make(map[pairKey]*sync.Mutex),
		remaining:    make(map[string]decimal.Decimal),
		avgUpserts:   make(map[pairKey]*entity.AverageCostState),
		levelUpserts: make(map[pairKey]*entity.StockLevel),
	}
	defer t.unlockPairs()

	if err := fn(&txMoveRepo{t}, &txLayerRepo{t}, &txAvgRepo{t}, &txLevelRepo{t}); err != nil {
		return err
	}
	t.commit()
	return nil
}

// tx staging de una transacción en curso.
type tx struct {
	s            *Store
	locked       map[pairKey]*sync.Mutex
	newMoves     []*entity.StockMove
	newLayers    []*entity.CostLayer
	remaining    map[string]decimal.Decimal // layerID -> nuevo remanente
	avgUpserts   map[pairKey]*entity.AverageCostState
	levelUpserts map[pairKey]*entity.StockLevel
}

// lockPair toma el mutex del par si esta transacción aún no lo tiene.
func (t *tx) lockPair(key pairKey) {
	if _, held := t.locked[key]; held {
		return
	}
	m := t.s.pairLock(key)
	m.Lock()
	t.locked[key] = m
}

func (t *tx) unlockPairs() {
	for _, m := range t.locked {
		m.Unlock()
	}
	t.locked = nil
}

// commit aplica el staging al store. Los pares siguen bloqueados, así que
// nadie puede leer estado intermedio del par hasta soltar los mutex.
func (t *tx) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	t.s.moves = append(t.s.moves, t.newMoves...)
	for _, l := range t.newLayers {
		if rem, ok := t.remaining[l.ID]; ok {
			l.RemainingQty = rem
			delete(t.remaining, l.ID)
		}
		key := pairKey{l.ItemID, l.WarehouseID}
		t.s.layers[key] = append(t.s.layers[key], l)
	}
	for id, rem := range t.remaining {
		for _, layers := range t.s.layers {
			for _, l := range layers {
				if l.ID == id {
					l.RemainingQty = rem
				}
			}
		}
	}
	for key, st := range t.avgUpserts {
		t.s.avg[key] = st
	}
	for key, lv := range t.levelUpserts {
		t.s.levels[key] = lv
	}
}

// ── Repositorios atados a la transacción ─────────────────────────────────────

type txMoveRepo struct{ t *tx }

var _ repository.StockMoveRepository = (*txMoveRepo)(nil)

func (r *txMoveRepo) Create(move *entity.StockMove) error {
	if err := r.t.s.fault("create_move"); err != nil {
		return err
	}
	cp := *move
	r.t.newMoves = append(r.t.newMoves, &cp)
	return nil
}

func (r *txMoveRepo) GetByID(id string) (*entity.StockMove, error) {
	for _, m := range r.t.newMoves {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	for _, m := range r.t.s.moves {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *txMoveRepo) ListCard(itemID, warehouseID string, from, to *time.Time, limit int) ([]*entity.StockMove, error) {
	// El kardex no se consulta dentro de transacciones de escritura.
	return listCard(r.t.s, itemID, warehouseID, from, to, limit), nil
}

type txLayerRepo struct{ t *tx }

var _ repository.CostLayerRepository = (*txLayerRepo)(nil)

func (r *txLayerRepo) Create(layer *entity.CostLayer) error {
	if err := r.t.s.fault("create_layer"); err != nil {
		return err
	}
	r.t.lockPair(pairKey{layer.ItemID, layer.WarehouseID})
	cp := *layer
	r.t.newLayers = append(r.t.newLayers, &cp)
	return nil
}

func (r *txLayerRepo) ListOpenForUpdate(itemID, warehouseID string) ([]*entity.CostLayer, error) {
	key := pairKey{itemID, warehouseID}
	r.t.lockPair(key)

	r.t.s.mu.Lock()
	committed := r.t.s.layers[key]
	out := make([]*entity.CostLayer, 0, len(committed))
	for _, l := range committed {
		cp := *l
		if rem, ok := r.t.remaining[cp.ID]; ok {
			cp.RemainingQty = rem
		}
		if cp.RemainingQty.GreaterThan(decimal.Zero) {
			out = append(out, &cp)
		}
	}
	r.t.s.mu.Unlock()

	for _, l := range r.t.newLayers {
		if l.ItemID == itemID && l.WarehouseID == warehouseID {
			cp := *l
			if rem, ok := r.t.remaining[cp.ID]; ok {
				cp.RemainingQty = rem
			}
			if cp.RemainingQty.GreaterThan(decimal.Zero) {
				out = append(out, &cp)
			}
		}
	}
	domaincosting.SortLayers(out)
	return out, nil
}

func (r *txLayerRepo) UpdateRemaining(layerID string, remaining decimal.Decimal) error {
	if err := r.t.s.fault("update_layer"); err != nil {
		return err
	}
	r.t.remaining[layerID] = remaining
	return nil
}

type txAvgRepo struct{ t *tx }

var _ repository.AverageCostRepository = (*txAvgRepo)(nil)

func (r *txAvgRepo) GetForUpdate(itemID, warehouseID string) (*entity.AverageCostState, error) {
	key := pairKey{itemID, warehouseID}
	r.t.lockPair(key)

	if st, ok := r.t.avgUpserts[key]; ok {
		cp := *st
		return &cp, nil
	}
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	if st, ok := r.t.s.avg[key]; ok {
		cp := *st
		return &cp, nil
	}
	return &entity.AverageCostState{
		ItemID: itemID, WarehouseID: warehouseID,
		OnHandQty: decimal.Zero, AvgCost: decimal.Zero,
	}, nil
}

func (r *txAvgRepo) Upsert(state *entity.AverageCostState) error {
	if err := r.t.s.fault("upsert_avg"); err != nil {
		return err
	}
	key := pairKey{state.ItemID, state.WarehouseID}
	r.t.lockPair(key)
	cp := *state
	r.t.avgUpserts[key] = &cp
	return nil
}

type txLevelRepo struct{ t *tx }

var _ repository.StockLevelRepository = (*txLevelRepo)(nil)

func (r *txLevelRepo) Get(itemID, warehouseID string) (*entity.StockLevel, error) {
	return r.GetForUpdate(itemID, warehouseID)
}

func (r *txLevelRepo) GetForUpdate(itemID, warehouseID string) (*entity.StockLevel, error) {
	key := pairKey{itemID, warehouseID}
	r.t.lockPair(key)

	if lv, ok := r.t.levelUpserts[key]; ok {
		cp := *lv
		return &cp, nil
	}
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	if lv, ok := r.t.s.levels[key]; ok {
		cp := *lv
		return &cp, nil
	}
	return &entity.StockLevel{ItemID: itemID, WarehouseID: warehouseID, OnHand: decimal.Zero}, nil
}

func (r *txLevelRepo) Upsert(level *entity.StockLevel) error {
	if err := r.t.s.fault("upsert_level"); err != nil {
		return err
	}
	key := pairKey{level.ItemID, level.WarehouseID}
	r.t.lockPair(key)
	cp := *level
	r.t.levelUpserts[key] = &cp
	return nil
}
