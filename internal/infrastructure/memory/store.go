// Package memory implementa los puertos del motor de costeo sobre estructuras
// en memoria, con la misma disciplina de exclusión del backend PostgreSQL:
// un mutex por par (item, bodega) que se mantiene durante toda la transacción.
// Sirve para tests y para correr la API sin base de datos.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

type pairKey struct {
	itemID      string
	warehouseID string
}

// Store estado compartido en memoria. Las escrituras solo ocurren al confirmar
// una transacción (ver tx.go); las lecturas fuera de transacción toman mu.
type Store struct {
	mu sync.Mutex

	items      map[string]*entity.Item      // por ID
	itemsBySKU map[string]string            // SKU -> ID
	warehouses map[string]*entity.Warehouse // por ID
	whByCode   map[string]string            // código -> ID

	moves  []*entity.StockMove
	layers map[pairKey][]*entity.CostLayer
	avg    map[pairKey]*entity.AverageCostState
	levels map[pairKey]*entity.StockLevel

	pairLocks map[pairKey]*sync.Mutex

	// Fault permite inyectar fallas por operación en tests de atomicidad
	// (ops: create_move, create_layer, update_layer, upsert_avg, upsert_level).
	Fault func(op string) error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		items:      make(map[string]*entity.Item),
		itemsBySKU: make(map[string]string),
		warehouses: make(map[string]*entity.Warehouse),
		whByCode:   make(map[string]string),
		layers:     make(map[pairKey][]*entity.CostLayer),
		avg:        make(map[pairKey]*entity.AverageCostState),
		levels:     make(map[pairKey]*entity.StockLevel),
		pairLocks:  make(map[pairKey]*sync.Mutex),
	}
}

func (s *Store) fault(op string) error {
	if s.Fault != nil {
		return s.Fault(op)
	}
	return nil
}

// pairLock devuelve (creándolo si hace falta) el mutex del par.
func (s *Store) pairLock(key pairKey) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.pairLocks[key]
	if !ok {
		m = &sync.Mutex{}
		s.pairLocks[key] = m
	}
	return m
}

// AddItem registra un item; asigna ID si viene vacío.
func (s *Store) AddItem(item *entity.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.itemsBySKU[item.SKU]; exists {
		return domain.ErrDuplicate
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	cp := *item
	s.items[cp.ID] = &cp
	s.itemsBySKU[cp.SKU] = cp.ID
	return nil
}

// AddWarehouse registra una bodega; asigna ID si viene vacío.
func (s *Store) AddWarehouse(wh *entity.Warehouse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.whByCode[wh.Code]; exists {
		return domain.ErrDuplicate
	}
	if wh.ID == "" {
		wh.ID = uuid.New().String()
	}
	if wh.CreatedAt.IsZero() {
		wh.CreatedAt = time.Now()
	}
	cp := *wh
	s.warehouses[cp.ID] = &cp
	s.whByCode[cp.Code] = cp.ID
	return nil
}

// Moves devuelve una copia del libro completo (para asserts en tests).
func (s *Store) Moves() []*entity.StockMove {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.StockMove, len(s.moves))
	for i, m := range s.moves {
		cp := *m
		out[i] = &cp
	}
	return out
}

// Layers devuelve una copia de las capas del par en orden de consumo.
func (s *Store) Layers(itemID, warehouseID string) []*entity.CostLayer {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.layers[pairKey{itemID, warehouseID}]
	out := make([]*entity.CostLayer, len(src))
	for i, l := range src {
		cp := *l
		out[i] = &cp
	}
	return out
}

// AverageState devuelve una copia del estado promedio del par (nil si no hay).
func (s *Store) AverageState(itemID, warehouseID string) *entity.AverageCostState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.avg[pairKey{itemID, warehouseID}]
	if !ok {
		return nil
	}
	cp := *st
	return &cp
}

// Level devuelve una copia de la existencia materializada del par.
func (s *Store) Level(itemID, warehouseID string) *entity.StockLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	lv, ok := s.levels[pairKey{itemID, warehouseID}]
	if !ok {
		return &entity.StockLevel{ItemID: itemID, WarehouseID: warehouseID, OnHand: decimal.Zero}
	}
	cp := *lv
	return &cp
}
