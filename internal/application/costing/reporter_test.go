package costing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcosting "github.com/jhoicas/kardex-api/internal/application/costing"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/costing"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
)

func newReports(f *fixture) *appcosting.ReportUseCase {
	return appcosting.NewReportUseCase(
		memory.NewReportRepository(f.store),
		memory.NewStockMoveRepository(f.store),
		memory.NewItemRepository(f.store),
		memory.NewWarehouseRepository(f.store),
	)
}

// El saldo calculado por suma con signo sobre el libro debe coincidir con el
// saldo materializado que mantienen los movimientos.
func TestBalance_CoincideConSaldoVivo(t *testing.T) {
	f := newFixture(t, costing.PolicyFIFO)
	reports := newReports(f)
	ctx := context.Background()

	f.receive(t, "MAIN", 10, 5.00)
	f.receive(t, "MAIN", 10, 7.00)
	_, err := f.processor.Issue(ctx, appcosting.IssueInput{
		SKU: "WIDGET", WarehouseCode: "MAIN", Quantity: decimal.NewFromInt(15),
	})
	require.NoError(t, err)
	_, err = f.processor.Transfer(ctx, appcosting.TransferInput{
		SKU: "WIDGET", FromCode: "MAIN", ToCode: "ALT", Quantity: decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	rows, err := reports.Balance(ctx, appcosting.BalanceQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Ordenadas por (sku, bodega): ALT antes que MAIN
	assert.Equal(t, "ALT", rows[0].WarehouseCode)
	assert.True(t, rows[0].OnHand.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "MAIN", rows[1].WarehouseCode)
	assert.True(t, rows[1].OnHand.Equal(decimal.NewFromInt(3)))

	// Equivalencia con el saldo materializado
	assert.True(t, rows[0].OnHand.Equal(f.store.Level(f.item.ID, f.alt.ID).OnHand))
	assert.True(t, rows[1].OnHand.Equal(f.store.Level(f.item.ID, f.main.ID).OnHand))
}

func TestBalance_AsOfPasado(t *testing.T) {
	f := newFixture(t, costing.PolicyFIFO)
	reports := newReports(f)
	f.receive(t, "MAIN", 10, 5.00)

	antes := time.Now().Add(-time.Hour)
	rows, err := reports.Balance(context.Background(), appcosting.BalanceQuery{AsOf: &antes})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// Un filtro presente pero inexistente es un error, no una lista vacía.
func TestBalance_FiltroInexistente(t *testing.T) {
	f := newFixture(t, costing.PolicyFIFO)
	reports := newReports(f)

	_, err := reports.Balance(context.Background(), appcosting.BalanceQuery{SKU: "NO-EXISTE"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = reports.Balance(context.Background(), appcosting.BalanceQuery{WarehouseCode: "NO-EXISTE"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestValuation_FIFO(t *testing.T) {
	f := newFixture(t, costing.PolicyFIFO)
	reports := newReports(f)
	ctx := context.Background()

	f.receive(t, "MAIN", 10, 5.00)
	f.receive(t, "MAIN", 10, 7.00)
	_, err := f.processor.Issue(ctx, appcosting.IssueInput{
		SKU: "WIDGET", WarehouseCode: "MAIN", Quantity: decimal.NewFromInt(15),
	})
	require.NoError(t, err)

	rows, err := reports.Valuation(ctx, appcosting.ValuationQuery{Method: "fifo"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Quedan 5 unidades de la capa a 7.00
	assert.Equal(t, "WIDGET", rows[0].SKU)
	assert.True(t, rows[0].OnHand.Equal(decimal.NewFromInt(5)))
	assert.True(t, rows[0].AvgCost.Equal(decimal.NewFromInt(7)))
	assert.True(t, rows[0].StockValue.Equal(decimal.NewFromInt(35)))
}

// El mismo libro valorizado bajo promedio ponderado da otra cifra: el método
// es un parámetro del reporte, no un atributo del movimiento.
func TestValuation_PromedioSobreElMismoLibro(t *testing.T) {
	f := newFixture(t, costing.PolicyFIFO)
	reports := newReports(f)
	ctx := context.Background()

	f.receive(t, "MAIN", 10, 5.00)
	f.receive(t, "MAIN", 10, 7.00)
	_, err := f.processor.Issue(ctx, appcosting.IssueInput{
		SKU: "WIDGET", WarehouseCode: "MAIN", Quantity: decimal.NewFromInt(15),
	})
	require.NoError(t, err)

	rows, err := reports.Valuation(ctx, appcosting.ValuationQuery{Method: "avg"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Promedio tras las dos entradas: 6.00; 5 unidades restantes
	assert.True(t, rows[0].OnHand.Equal(decimal.NewFromInt(5)))
	assert.True(t, rows[0].AvgCost.Equal(decimal.NewFromInt(6)))
	assert.True(t, rows[0].StockValue.Equal(decimal.NewFromInt(30)))
}

func TestValuation_MetodoInvalido(t *testing.T) {
	f := newFixture(t, costing.PolicyFIFO)
	reports := newReports(f)

	_, err := reports.Valuation(context.Background(), appcosting.ValuationQuery{Method: "lifo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Reproducir el libro desde cero debe dar exactamente el estado que los
// trackers incrementales mantuvieron movimiento a movimiento.
func TestReplay_ReproduceTrackersIncrementales(t *testing.T) {
	f := newFixture(t, costing.PolicyFIFO)
	ctx := context.Background()

	f.receive(t, "MAIN", 10, 5.00)
	f.receive(t, "MAIN", 10, 7.00)
	_, err := f.processor.Issue(ctx, appcosting.IssueInput{
		SKU: "WIDGET", WarehouseCode: "MAIN", Quantity: decimal.NewFromInt(15),
	})
	require.NoError(t, err)
	f.receive(t, "MAIN", 3, 8.00)

	state, err := costing.Replay(f.store.Moves(), costing.PolicyFIFO)
	require.NoError(t, err)

	key := costing.PairKey{ItemID: f.item.ID, WarehouseID: f.main.ID}
	vivas := f.store.Layers(f.item.ID, f.main.ID)
	assert.True(t, state.OnHand(key).Equal(costing.LayersOnHand(vivas)))
	assert.True(t, state.Value(key).Equal(costing.LayersValue(vivas)))
	assert.True(t, state.OnHand(key).Equal(f.store.Level(f.item.ID, f.main.ID).OnHand))
}

func TestStockCard(t *testing.T) {
	f := newFixture(t, costing.PolicyFIFO)
	reports := newReports(f)
	ctx := context.Background()

	f.receive(t, "MAIN", 10, 5.00)
	f.receive(t, "ALT", 3, 9.00)
	_, err := f.processor.Issue(ctx, appcosting.IssueInput{
		SKU: "WIDGET", WarehouseCode: "MAIN", Quantity: decimal.NewFromInt(4),
	})
	require.NoError(t, err)

	// Sin filtro de bodega: los tres movimientos en orden cronológico
	rows, err := reports.StockCard(ctx, appcosting.StockCardQuery{SKU: "WIDGET"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i].MovedAt.Before(rows[i-1].MovedAt))
	}

	// Filtrado por bodega
	rows, err = reports.StockCard(ctx, appcosting.StockCardQuery{SKU: "WIDGET", WarehouseCode: "ALT"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ALT", rows[0].WarehouseCode)
	assert.True(t, rows[0].Quantity.Equal(decimal.NewFromInt(3)))

	_, err = reports.StockCard(ctx, appcosting.StockCardQuery{SKU: "NO-EXISTE"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
