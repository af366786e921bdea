package costing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/costing"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// MovementProcessor es el único camino de escritura del motor de costeo.
// Cada llamada es una transacción de un solo disparo: Validar -> Despachar por
// política -> Persistir libro y tracker -> Responder. Si algo falla después de
// abrir la transacción no queda ni movimiento ni mutación de tracker.
type MovementProcessor struct {
	txRunner      TxRunner
	itemRepo      repository.ItemRepository
	warehouseRepo repository.WarehouseRepository
	defaultPolicy costing.Policy
	log           *logger.Logger
}

// NewMovementProcessor construye el procesador. defaultPolicy se usa cuando la
// operación no trae política explícita (normalmente la de configuración).
func NewMovementProcessor(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	warehouseRepo repository.WarehouseRepository,
	defaultPolicy costing.Policy,
	log *logger.Logger,
) *MovementProcessor {
	if log == nil {
		log = logger.Nop()
	}
	return &MovementProcessor{
		txRunner:      txRunner,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
		defaultPolicy: defaultPolicy,
		log:           log,
	}
}

// ReceiveInput entrada para registrar una recepción de stock.
type ReceiveInput struct {
	SKU           string
	WarehouseCode string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	Reference     string
	Note          string
	Lot           string
	Policy        costing.Policy // vacío = política por defecto
}

// ReceiveResult resultado de una recepción.
type ReceiveResult struct {
	Method     costing.Policy
	MoveID     string
	LayerID    string           // solo FIFO
	NewAverage *decimal.Decimal // solo promedio ponderado
}

// IssueInput entrada para registrar una salida de stock.
type IssueInput struct {
	SKU           string
	WarehouseCode string
	Quantity      decimal.Decimal
	Reference     string
	Note          string
	Policy        costing.Policy
}

// IssueResult resultado de una salida. CostUsed es el costo realizado:
// promedio ponderado de las capas consumidas bajo FIFO, promedio vigente bajo
// promedio ponderado. Consumed trae el desglose por capa (FIFO).
type IssueResult struct {
	Method   costing.Policy
	MoveID   string
	CostUsed decimal.Decimal
	Consumed []costing.LayerConsumption
}

// TransferInput entrada para un traslado entre bodegas: una salida en origen
// y una entrada en destino al costo realizado, en la misma transacción.
type TransferInput struct {
	SKU       string
	FromCode  string
	ToCode    string
	Quantity  decimal.Decimal
	Reference string
	Policy    costing.Policy
}

// TransferResult resultado de un traslado.
type TransferResult struct {
	Method    costing.Policy
	OutMoveID string
	InMoveID  string
	CostUsed  decimal.Decimal
}

func (p *MovementProcessor) policyOf(override costing.Policy) (costing.Policy, error) {
	if override == "" {
		override = p.defaultPolicy
	}
	if !override.Valid() {
		return "", domain.ErrInvalidInput
	}
	return override, nil
}

// Receive valida, resuelve SKU y bodega, y registra la recepción bajo la
// política vigente: movimiento IN en el libro más capa nueva (FIFO) o promedio
// recalculado (promedio ponderado), todo en una transacción.
func (p *MovementProcessor) Receive(ctx context.Context, input ReceiveInput) (*ReceiveResult, error) {
	policy, err := p.policyOf(input.Policy)
	if err != nil {
		return nil, err
	}
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	if input.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidCost
	}

	item, wh, err := p.resolve(input.SKU, input.WarehouseCode)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := &ReceiveResult{Method: policy}

	err = p.txRunner.Run(ctx, func(
		moveRepo repository.StockMoveRepository,
		layerRepo repository.CostLayerRepository,
		avgRepo repository.AverageCostRepository,
		levelRepo repository.StockLevelRepository,
	) error {
		// Bloquea la fila del par (SELECT FOR UPDATE): serializa escritores
		// concurrentes sobre el mismo (item, bodega).
		level, err := levelRepo.GetForUpdate(item.ID, wh.ID)
		if err != nil {
			return err
		}
		moveID, layerID, newAvg, err := applyReceive(
			moveRepo, layerRepo, avgRepo, policy,
			item.ID, wh.ID, input.Quantity, input.UnitCost,
			input.Reference, input.Note, input.Lot, now,
		)
		if err != nil {
			return err
		}
		level.OnHand = level.OnHand.Add(input.Quantity)
		level.UpdatedAt = now
		if err := levelRepo.Upsert(level); err != nil {
			return err
		}
		result.MoveID = moveID
		result.LayerID = layerID
		result.NewAverage = newAvg
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.log.Debug().
		Str("sku", input.SKU).Str("warehouse", input.WarehouseCode).
		Str("policy", policy.String()).Str("move_id", result.MoveID).
		Str("qty", input.Quantity.String()).
		Msg("recepción registrada")
	return result, nil
}

// Issue valida, resuelve SKU y bodega, y registra la salida bajo la política
// vigente. La salida es todo-o-nada: con stock insuficiente no se escribe
// movimiento ni se toca ninguna capa o promedio.
func (p *MovementProcessor) Issue(ctx context.Context, input IssueInput) (*IssueResult, error) {
	policy, err := p.policyOf(input.Policy)
	if err != nil {
		return nil, err
	}
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}

	item, wh, err := p.resolve(input.SKU, input.WarehouseCode)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := &IssueResult{Method: policy}

	err = p.txRunner.Run(ctx, func(
		moveRepo repository.StockMoveRepository,
		layerRepo repository.CostLayerRepository,
		avgRepo repository.AverageCostRepository,
		levelRepo repository.StockLevelRepository,
	) error {
		level, err := levelRepo.GetForUpdate(item.ID, wh.ID)
		if err != nil {
			return err
		}
		moveID, costUsed, consumed, err := applyIssue(
			moveRepo, layerRepo, avgRepo, policy,
			item.ID, wh.ID, input.Quantity, input.Reference, input.Note, now,
		)
		if err != nil {
			return err
		}
		level.OnHand = level.OnHand.Sub(input.Quantity)
		level.UpdatedAt = now
		if err := levelRepo.Upsert(level); err != nil {
			return err
		}
		result.MoveID = moveID
		result.CostUsed = costUsed
		result.Consumed = consumed
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.log.Debug().
		Str("sku", input.SKU).Str("warehouse", input.WarehouseCode).
		Str("policy", policy.String()).Str("move_id", result.MoveID).
		Str("qty", input.Quantity.String()).Str("cost_used", result.CostUsed.String()).
		Msg("salida registrada")
	return result, nil
}

// Transfer registra un traslado como salida en origen + entrada en destino al
// costo realizado, en una sola transacción (dos entradas en el libro).
func (p *MovementProcessor) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	policy, err := p.policyOf(input.Policy)
	if err != nil {
		return nil, err
	}
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	if input.FromCode == input.ToCode {
		return nil, domain.ErrInvalidInput
	}

	item, from, err := p.resolve(input.SKU, input.FromCode)
	if err != nil {
		return nil, err
	}
	to, err := p.warehouseRepo.GetByCode(input.ToCode)
	if err != nil {
		return nil, err
	}
	if to == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	result := &TransferResult{Method: policy}

	err = p.txRunner.Run(ctx, func(
		moveRepo repository.StockMoveRepository,
		layerRepo repository.CostLayerRepository,
		avgRepo repository.AverageCostRepository,
		levelRepo repository.StockLevelRepository,
	) error {
		// Bloquear ambos pares en orden estable de ID de bodega para no
		// interbloquearse con un traslado en sentido contrario.
		first, second := from, to
		if second.ID < first.ID {
			first, second = second, first
		}
		levels := make(map[string]*entity.StockLevel, 2)
		for _, w := range []*entity.Warehouse{first, second} {
			lv, err := levelRepo.GetForUpdate(item.ID, w.ID)
			if err != nil {
				return err
			}
			levels[w.ID] = lv
		}

		outID, costUsed, _, err := applyIssue(
			moveRepo, layerRepo, avgRepo, policy,
			item.ID, from.ID, input.Quantity, input.Reference, "traslado a "+to.Code, now,
		)
		if err != nil {
			return err
		}
		inID, _, _, err := applyReceive(
			moveRepo, layerRepo, avgRepo, policy,
			item.ID, to.ID, input.Quantity, costUsed,
			input.Reference, "traslado desde "+from.Code, "", now,
		)
		if err != nil {
			return err
		}

		origin := levels[from.ID]
		origin.OnHand = origin.OnHand.Sub(input.Quantity)
		origin.UpdatedAt = now
		if err := levelRepo.Upsert(origin); err != nil {
			return err
		}
		dest := levels[to.ID]
		dest.OnHand = dest.OnHand.Add(input.Quantity)
		dest.UpdatedAt = now
		if err := levelRepo.Upsert(dest); err != nil {
			return err
		}

		result.OutMoveID = outID
		result.InMoveID = inID
		result.CostUsed = costUsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.log.Debug().
		Str("sku", input.SKU).Str("from", input.FromCode).Str("to", input.ToCode).
		Str("policy", policy.String()).Str("qty", input.Quantity.String()).
		Msg("traslado registrado")
	return result, nil
}

// resolve valida que el SKU y el código de bodega existan.
func (p *MovementProcessor) resolve(sku, whCode string) (*entity.Item, *entity.Warehouse, error) {
	item, err := p.itemRepo.GetBySKU(sku)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, domain.ErrNotFound
	}
	wh, err := p.warehouseRepo.GetByCode(whCode)
	if err != nil {
		return nil, nil, err
	}
	if wh == nil {
		return nil, nil, domain.ErrNotFound
	}
	return item, wh, nil
}

// applyReceive muta el tracker de la política y escribe el movimiento IN.
// El caller ya debe tener bloqueada la fila del par.
func applyReceive(
	moveRepo repository.StockMoveRepository,
	layerRepo repository.CostLayerRepository,
	avgRepo repository.AverageCostRepository,
	policy costing.Policy,
	itemID, warehouseID string,
	qty, unitCost decimal.Decimal,
	reference, note, lot string,
	now time.Time,
) (moveID, layerID string, newAvg *decimal.Decimal, err error) {
	moveID = uuid.New().String()

	switch policy {
	case costing.PolicyFIFO:
		layer := &entity.CostLayer{
			ID:           uuid.New().String(),
			ItemID:       itemID,
			WarehouseID:  warehouseID,
			MoveID:       moveID,
			OriginalQty:  qty,
			RemainingQty: qty,
			UnitCost:     unitCost,
			ReceivedAt:   now,
		}
		if err = layerRepo.Create(layer); err != nil {
			return "", "", nil, err
		}
		layerID = layer.ID
	case costing.PolicyMovingAverage:
		state, aerr := avgRepo.GetForUpdate(itemID, warehouseID)
		if aerr != nil {
			return "", "", nil, aerr
		}
		avg := costing.NextAverage(state.OnHandQty, state.AvgCost, qty, unitCost)
		state.AvgCost = avg
		state.OnHandQty = state.OnHandQty.Add(qty)
		state.UpdatedAt = now
		if err = avgRepo.Upsert(state); err != nil {
			return "", "", nil, err
		}
		newAvg = &avg
	}

	move := &entity.StockMove{
		ID:          moveID,
		Type:        entity.MoveTypeIN,
		ItemID:      itemID,
		WarehouseID: warehouseID,
		Quantity:    qty,
		UnitCost:    unitCost,
		TotalCost:   costing.RoundCost(qty.Mul(unitCost)),
		MovedAt:     now,
		Reference:   reference,
		Note:        note,
		Lot:         lot,
		CreatedAt:   now,
	}
	if err = moveRepo.Create(move); err != nil {
		return "", "", nil, err
	}
	return moveID, layerID, newAvg, nil
}

// applyIssue muta el tracker de la política y escribe el movimiento OUT con
// el costo realizado. El caller ya debe tener bloqueada la fila del par.
func applyIssue(
	moveRepo repository.StockMoveRepository,
	layerRepo repository.CostLayerRepository,
	avgRepo repository.AverageCostRepository,
	policy costing.Policy,
	itemID, warehouseID string,
	qty decimal.Decimal,
	reference, note string,
	now time.Time,
) (moveID string, costUsed decimal.Decimal, consumed []costing.LayerConsumption, err error) {
	switch policy {
	case costing.PolicyFIFO:
		layers, lerr := layerRepo.ListOpenForUpdate(itemID, warehouseID)
		if lerr != nil {
			return "", decimal.Zero, nil, lerr
		}
		consumed, costUsed, err = costing.ConsumeLayers(layers, qty)
		if err != nil {
			return "", decimal.Zero, nil, err
		}
		remaining := make(map[string]decimal.Decimal, len(layers))
		for _, l := range layers {
			remaining[l.ID] = l.RemainingQty
		}
		for _, c := range consumed {
			if err = layerRepo.UpdateRemaining(c.LayerID, remaining[c.LayerID]); err != nil {
				return "", decimal.Zero, nil, err
			}
		}
	case costing.PolicyMovingAverage:
		state, aerr := avgRepo.GetForUpdate(itemID, warehouseID)
		if aerr != nil {
			return "", decimal.Zero, nil, aerr
		}
		if state.OnHandQty.LessThan(qty) {
			return "", decimal.Zero, nil, domain.ErrInsufficientStock
		}
		// La salida no mueve el promedio, solo descuenta cantidad.
		costUsed = state.AvgCost
		state.OnHandQty = state.OnHandQty.Sub(qty)
		state.UpdatedAt = now
		if err = avgRepo.Upsert(state); err != nil {
			return "", decimal.Zero, nil, err
		}
	}

	move := &entity.StockMove{
		ID:          uuid.New().String(),
		Type:        entity.MoveTypeOUT,
		ItemID:      itemID,
		WarehouseID: warehouseID,
		Quantity:    qty,
		UnitCost:    costUsed,
		TotalCost:   costing.RoundCost(qty.Mul(costUsed)),
		MovedAt:     now,
		Reference:   reference,
		Note:        note,
		CreatedAt:   now,
	}
	if err = moveRepo.Create(move); err != nil {
		return "", decimal.Zero, nil, err
	}
	return move.ID, costUsed, consumed, nil
}
