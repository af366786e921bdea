package costing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// PairKey identifica un par (item, bodega).
type PairKey struct {
	ItemID      string
	WarehouseID string
}

// PairState estado reconstruido de un par tras reproducir el libro.
// Bajo FIFO las capas; bajo promedio el estado de costo promedio.
type PairState struct {
	Layers []*entity.CostLayer
	Avg    *entity.AverageCostState
}

// ReplayState es el resultado de reproducir el libro de movimientos desde
// cero. Es la base de la valorización histórica: el estado vivo de los
// trackers solo refleja el presente, así que toda consulta "a una fecha"
// se responde reconstruyendo hasta esa fecha.
type ReplayState struct {
	policy Policy
	pairs  map[PairKey]*PairState
}

// Replay reproduce los movimientos en orden (MovedAt asc, ID asc) partiendo
// de estado vacío y devuelve el estado de trackers resultante. Los trackers
// incrementales deben coincidir exactamente con este resultado (propiedad de
// reconstrucción del libro).
func Replay(moves []*entity.StockMove, policy Policy) (*ReplayState, error) {
	if !policy.Valid() {
		return nil, domain.ErrInvalidInput
	}

	ordered := make([]*entity.StockMove, len(moves))
	copy(ordered, moves)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].MovedAt.Equal(ordered[j].MovedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].MovedAt.Before(ordered[j].MovedAt)
	})

	st := &ReplayState{policy: policy, pairs: make(map[PairKey]*PairState)}
	for _, m := range ordered {
		key := PairKey{ItemID: m.ItemID, WarehouseID: m.WarehouseID}
		ps := st.pairs[key]
		if ps == nil {
			ps = &PairState{Avg: &entity.AverageCostState{ItemID: m.ItemID, WarehouseID: m.WarehouseID,
				OnHandQty: decimal.Zero, AvgCost: decimal.Zero}}
			st.pairs[key] = ps
		}

		switch m.Type {
		case entity.MoveTypeIN:
			if policy == PolicyFIFO {
				// Capa sintética: el ID del movimiento sirve de ID de capa,
				// conservando el desempate por orden de inserción.
				ps.Layers = append(ps.Layers, &entity.CostLayer{
					ID:           m.ID,
					ItemID:       m.ItemID,
					WarehouseID:  m.WarehouseID,
					MoveID:       m.ID,
					OriginalQty:  m.Quantity,
					RemainingQty: m.Quantity,
					UnitCost:     m.UnitCost,
					ReceivedAt:   m.MovedAt,
				})
			} else {
				ps.Avg.AvgCost = NextAverage(ps.Avg.OnHandQty, ps.Avg.AvgCost, m.Quantity, m.UnitCost)
				ps.Avg.OnHandQty = ps.Avg.OnHandQty.Add(m.Quantity)
				ps.Avg.UpdatedAt = m.MovedAt
			}
		case entity.MoveTypeOUT:
			if policy == PolicyFIFO {
				if _, _, err := ConsumeLayers(ps.Layers, m.Quantity); err != nil {
					return nil, fmt.Errorf("replay movimiento %s: %w", m.ID, err)
				}
			} else {
				if ps.Avg.OnHandQty.LessThan(m.Quantity) {
					return nil, fmt.Errorf("replay movimiento %s: %w", m.ID, domain.ErrInsufficientStock)
				}
				ps.Avg.OnHandQty = ps.Avg.OnHandQty.Sub(m.Quantity)
				ps.Avg.UpdatedAt = m.MovedAt
			}
		default:
			return nil, fmt.Errorf("replay movimiento %s: tipo %q: %w", m.ID, m.Type, domain.ErrInvalidInput)
		}
	}
	return st, nil
}

// Pairs devuelve las llaves de par presentes, ordenadas por (item, bodega).
func (s *ReplayState) Pairs() []PairKey {
	keys := make([]PairKey, 0, len(s.pairs))
	for k := range s.pairs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ItemID == keys[j].ItemID {
			return keys[i].WarehouseID < keys[j].WarehouseID
		}
		return keys[i].ItemID < keys[j].ItemID
	})
	return keys
}

// Pair devuelve el estado reconstruido de un par (nil si no tuvo movimientos).
func (s *ReplayState) Pair(key PairKey) *PairState {
	return s.pairs[key]
}

// OnHand cantidad disponible del par según la política reproducida.
func (s *ReplayState) OnHand(key PairKey) decimal.Decimal {
	ps := s.pairs[key]
	if ps == nil {
		return decimal.Zero
	}
	if s.policy == PolicyFIFO {
		return LayersOnHand(ps.Layers)
	}
	return ps.Avg.OnHandQty
}

// Value valor de inventario del par: capas remanentes bajo FIFO,
// cantidad por promedio vigente bajo promedio ponderado.
func (s *ReplayState) Value(key PairKey) decimal.Decimal {
	ps := s.pairs[key]
	if ps == nil {
		return decimal.Zero
	}
	if s.policy == PolicyFIFO {
		return LayersValue(ps.Layers)
	}
	return RoundCost(ps.Avg.OnHandQty.Mul(ps.Avg.AvgCost))
}

// AvgCost costo unitario del par: promedio vigente, o valor/cantidad bajo FIFO.
func (s *ReplayState) AvgCost(key PairKey) decimal.Decimal {
	ps := s.pairs[key]
	if ps == nil {
		return decimal.Zero
	}
	if s.policy == PolicyMovingAverage {
		return ps.Avg.AvgCost
	}
	onHand := LayersOnHand(ps.Layers)
	if onHand.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return RoundCost(LayersValue(ps.Layers).Div(onHand))
}
