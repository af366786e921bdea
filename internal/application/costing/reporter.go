package costing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/costing"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// ReportUseCase responde las consultas de saldo y valorización. Solo lee:
// nunca escribe en el libro ni en los trackers.
//
// La valorización histórica se resuelve por replay del libro hasta la fecha
// pedida. Consultar las capas vivas daría cifras erróneas para fechas pasadas
// porque RemainingQty solo refleja el presente; el costo es O(movimientos)
// por consulta.
type ReportUseCase struct {
	reportRepo    repository.StockReportRepository
	moveRepo      repository.StockMoveRepository
	itemRepo      repository.ItemRepository
	warehouseRepo repository.WarehouseRepository
}

// NewReportUseCase construye el caso de uso de reportes.
func NewReportUseCase(
	reportRepo repository.StockReportRepository,
	moveRepo repository.StockMoveRepository,
	itemRepo repository.ItemRepository,
	warehouseRepo repository.WarehouseRepository,
) *ReportUseCase {
	return &ReportUseCase{
		reportRepo:    reportRepo,
		moveRepo:      moveRepo,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
	}
}

// BalanceQuery filtros del reporte de saldos. AsOf nil = ahora.
type BalanceQuery struct {
	AsOf          *time.Time
	SKU           string
	WarehouseCode string
}

// Balance suma con signo (+IN, -OUT) sobre el libro hasta AsOf, agrupado por
// (item, bodega). Con AsOf = ahora y sin filtros debe coincidir exactamente
// con el estado vivo de los trackers.
func (uc *ReportUseCase) Balance(ctx context.Context, q BalanceQuery) ([]repository.BalanceRow, error) {
	itemID, whID, err := uc.resolveFilters(q.SKU, q.WarehouseCode)
	if err != nil {
		return nil, err
	}
	return uc.reportRepo.Balance(q.AsOf, itemID, whID)
}

// ValuationQuery filtros del reporte de valorización.
type ValuationQuery struct {
	AsOf          *time.Time
	Method        string // fifo | avg | moving_avg
	SKU           string
	WarehouseCode string
}

// ValuationRow una fila de valorización por par (item, bodega).
type ValuationRow struct {
	SKU           string
	WarehouseCode string
	OnHand        decimal.Decimal
	AvgCost       decimal.Decimal
	StockValue    decimal.Decimal
}

// Valuation reconstruye capas o promedio por replay del libro hasta AsOf y
// valoriza cada par: remanente por costo de capa bajo FIFO, cantidad por
// promedio vigente bajo promedio ponderado.
func (uc *ReportUseCase) Valuation(ctx context.Context, q ValuationQuery) ([]ValuationRow, error) {
	policy, err := costing.ParsePolicy(q.Method)
	if err != nil {
		return nil, err
	}
	itemID, whID, err := uc.resolveFilters(q.SKU, q.WarehouseCode)
	if err != nil {
		return nil, err
	}

	ledger, err := uc.reportRepo.MovesUpTo(q.AsOf, itemID, whID)
	if err != nil {
		return nil, err
	}

	moves := make([]*entity.StockMove, len(ledger))
	refs := make(map[costing.PairKey]repository.LedgerMove, len(ledger))
	for i := range ledger {
		moves[i] = &ledger[i].Move
		key := costing.PairKey{ItemID: ledger[i].Move.ItemID, WarehouseID: ledger[i].Move.WarehouseID}
		refs[key] = ledger[i]
	}

	state, err := costing.Replay(moves, policy)
	if err != nil {
		return nil, err
	}

	rows := make([]ValuationRow, 0, len(refs))
	for _, key := range state.Pairs() {
		ref := refs[key]
		rows = append(rows, ValuationRow{
			SKU:           ref.SKU,
			WarehouseCode: ref.WarehouseCode,
			OnHand:        state.OnHand(key),
			AvgCost:       state.AvgCost(key),
			StockValue:    state.Value(key),
		})
	}
	return rows, nil
}

// StockCardQuery filtros del kardex de un SKU.
type StockCardQuery struct {
	SKU           string
	WarehouseCode string
	From          *time.Time
	To            *time.Time
	Limit         int
}

// StockCardRow una fila del kardex (movimiento cronológico de un SKU).
type StockCardRow struct {
	MovedAt       time.Time
	Type          string
	SKU           string
	WarehouseCode string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	Reference     string
	Note          string
	Lot           string
}

// StockCard lista los movimientos de un SKU en orden cronológico, con filtro
// opcional por bodega y rango de fechas.
func (uc *ReportUseCase) StockCard(ctx context.Context, q StockCardQuery) ([]StockCardRow, error) {
	item, err := uc.itemRepo.GetBySKU(q.SKU)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	whID := ""
	if q.WarehouseCode != "" {
		wh, err := uc.warehouseRepo.GetByCode(q.WarehouseCode)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, domain.ErrNotFound
		}
		whID = wh.ID
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 200
	}

	moves, err := uc.moveRepo.ListCard(item.ID, whID, q.From, q.To, limit)
	if err != nil {
		return nil, err
	}

	codes := make(map[string]string) // warehouseID -> código, para no resolver fila a fila
	rows := make([]StockCardRow, 0, len(moves))
	for _, m := range moves {
		code, ok := codes[m.WarehouseID]
		if !ok {
			wh, err := uc.warehouseRepo.GetByID(m.WarehouseID)
			if err != nil {
				return nil, err
			}
			if wh != nil {
				code = wh.Code
			}
			codes[m.WarehouseID] = code
		}
		rows = append(rows, StockCardRow{
			MovedAt:       m.MovedAt,
			Type:          m.Type,
			SKU:           item.SKU,
			WarehouseCode: code,
			Quantity:      m.Quantity,
			UnitCost:      m.UnitCost,
			Reference:     m.Reference,
			Note:          m.Note,
			Lot:           m.Lot,
		})
	}
	return rows, nil
}

// resolveFilters traduce filtros opcionales de SKU/bodega a IDs internos.
// Un filtro presente pero inexistente es ErrNotFound, no lista vacía.
func (uc *ReportUseCase) resolveFilters(sku, whCode string) (itemID, whID string, err error) {
	if sku != "" {
		item, err := uc.itemRepo.GetBySKU(sku)
		if err != nil {
			return "", "", err
		}
		if item == nil {
			return "", "", domain.ErrNotFound
		}
		itemID = item.ID
	}
	if whCode != "" {
		wh, err := uc.warehouseRepo.GetByCode(whCode)
		if err != nil {
			return "", "", err
		}
		if wh == nil {
			return "", "", domain.ErrNotFound
		}
		whID = wh.ID
	}
	return itemID, whID, nil
}
