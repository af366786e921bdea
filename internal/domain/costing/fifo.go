package costing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// LayerConsumption cantidad consumida de una capa en una salida FIFO.
type LayerConsumption struct {
	LayerID  string
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// SortLayers ordena capas en el orden de consumo FIFO: ReceivedAt ascendente
// con desempate por ID ascendente para que el consumo sea determinista.
func SortLayers(layers []*entity.CostLayer) {
	sort.SliceStable(layers, func(i, j int) bool {
		if layers[i].ReceivedAt.Equal(layers[j].ReceivedAt) {
			return layers[i].ID < layers[j].ID
		}
		return layers[i].ReceivedAt.Before(layers[j].ReceivedAt)
	})
}

// ConsumeLayers consume qty de las capas en orden FIFO, decrementando
// RemainingQty, y devuelve el desglose por capa y el costo unitario realizado
// (promedio ponderado de lo consumido, redondeado a CostScale).
//
// La salida es todo-o-nada: si la suma de remanentes no alcanza qty devuelve
// ErrInsufficientStock sin tocar ninguna capa.
func ConsumeLayers(layers []*entity.CostLayer, qty decimal.Decimal) ([]LayerConsumption, decimal.Decimal, error) {
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, decimal.Zero, domain.ErrInvalidQuantity
	}

	SortLayers(layers)

	// Verificar disponibilidad antes de mutar: ninguna capa se toca si falla.
	available := decimal.Zero
	for _, l := range layers {
		available = available.Add(l.RemainingQty)
	}
	if available.LessThan(qty) {
		return nil, decimal.Zero, domain.ErrInsufficientStock
	}

	var consumed []LayerConsumption
	totalCost := decimal.Zero
	pending := qty
	for _, l := range layers {
		if pending.IsZero() {
			break
		}
		if l.Consumed() {
			continue
		}
		take := decimal.Min(l.RemainingQty, pending)
		l.RemainingQty = l.RemainingQty.Sub(take)
		pending = pending.Sub(take)
		totalCost = totalCost.Add(take.Mul(l.UnitCost))
		consumed = append(consumed, LayerConsumption{
			LayerID:  l.ID,
			Quantity: take,
			UnitCost: l.UnitCost,
		})
	}

	realized := RoundCost(totalCost.Div(qty))
	return consumed, realized, nil
}

// LayersOnHand suma los remanentes de un conjunto de capas.
func LayersOnHand(layers []*entity.CostLayer) decimal.Decimal {
	total := decimal.Zero
	for _, l := range layers {
		total = total.Add(l.RemainingQty)
	}
	return total
}

// LayersValue valoriza un conjunto de capas: suma de remanente * costo de capa.
func LayersValue(layers []*entity.CostLayer) decimal.Decimal {
	total := decimal.Zero
	for _, l := range layers {
		total = total.Add(l.RemainingQty.Mul(l.UnitCost))
	}
	return RoundCost(total)
}
