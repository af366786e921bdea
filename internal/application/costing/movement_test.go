package costing_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcosting "github.com/jhoicas/kardex-api/internal/application/costing"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/costing"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
)

// fixture monta el procesador sobre el backend en memoria con un item y dos
// bodegas sembrados.
type fixture struct {
	store     *memory.Store
	processor *appcosting.MovementProcessor
	item      *entity.Item
	main      *entity.Warehouse
	alt       *entity.Warehouse
}

func newFixture(t *testing.T, policy costing.Policy) *fixture {
	t.Helper()
	store := memory.NewStore()
	itemRepo := memory.NewItemRepository(store)
	whRepo := memory.NewWarehouseRepository(store)

	item := &entity.Item{SKU: "WIDGET", Name: "Widget", UOM: "EA"}
	require.NoError(t, itemRepo.Create(item))
	main := &entity.Warehouse{Code: "MAIN", Name: "Principal"}
	require.NoError(t, whRepo.Create(main))
	alt := &entity.Warehouse{Code: "ALT", Name: "Secundaria"}
	require.NoError(t, whRepo.Create(alt))

	processor := appcosting.NewMovementProcessor(
		memory.NewTxRunner(store), itemRepo, whRepo, policy, nil,
	)
	return &fixture{store: store, processor: processor, item: item, main: main, alt: alt}
}

func (f *fixture) receive(t *testing.T, wh string, qty, cost float64) *appcosting.ReceiveResult {
	t.Helper()
	res, err := f.processor.Receive(context.Background(), appcosting.ReceiveInput{
		SKU:           "WIDGET",
		WarehouseCode: wh,
		Quantity:      decimal.NewFromFloat(qty),
		UnitCost:      decimal.NewFromFloat(cost),
		Reference:     "GR-test",
	})
	require.NoError(t, err)
	return res
}

func TestReceive_FIFO(t *testing.T) {
	f := newFixture(t, costing.PolicyFIFO)

	res := f.receive(t, "MAIN", 10, 5.00)
	assert.Equal(t, costing.PolicyFIFO, res.Method)
	assert.NotEmpty(t, res.MoveID)
	assert.NotEmpty(t, res.LayerID)
	assert.Nil(t, res.NewAverage)

	moves := f.store.Moves()
	require.Len(t, moves, 1)
	assert.Equal(t, entity.MoveTypeIN, moves[0].Type)
	assert.True(t, moves[0].TotalCost.Equal(decimal.NewFromInt(50)))

	layers := f.store.Layers(f.item.ID, f.main.ID)
	require.Len(t, layers, 1)
	assert.True(t, layers[0].RemainingQty.Equal(decimal.NewFromInt(10)))

	level := f.store.Level(f.item.ID, f.main.ID)
	assert.True(t, level.OnHand.Equal(decimal.NewFromInt(10)))
}

func TestReceive_PromedioMovil(t *testing.T) {
	f := newFixture(t, costing.PolicyMovingAverage)

	f.receive(t, "MAIN", 10, 5.00)
	res := f.receive(t, "MAIN", 10, 7.00)

	require.NotNil(t, res.NewAverage)
	assert.True(t, res.NewAverage.Equal(decimal.NewFromInt(6)))
	assert.Empty(t, res.LayerID)

	st := f.store.AverageState(f.item.ID, f.main.ID)
	require.NotNil(t, st)
	assert.True(t, st.OnHandQty.Equal(decimal.NewFromInt(20)))
	assert.True(t, st.AvgCost.Equal(decimal.NewFromInt(6)))

	// Bajo promedio no se crean capas
	assert.Empty(t, f.store.Layers(f.item.ID, f.main.ID))
}

func TestReceive_Validaciones(t *testing.T) {
	f := newFixture(t, costing.PolicyFIFO)
	ctx := context.Background()

	_, err := f.processor.Receive(ctx, appcosting.ReceiveInput{
		SKU: "WIDGET", WarehouseCode: "MAIN",
		Quantity: decimal.Zero, UnitCost: decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.processor.Receive(ctx, appcosting.ReceiveInput{
		SKU: "WIDGET", WarehouseCode: "MAIN",
		Quantity: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(-2),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCost)

	_, err = f.processor.Receive(ctx, appcosting.ReceiveInput{
		SKU: "NO-EXISTE", WarehouseCode: "MAIN",
		Quantity: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(2),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.processor.Receive(ctx, appcosting.ReceiveInput{
		SKU: "WIDGET", WarehouseCode: "NO-EXISTE",
		Quantity: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(2),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Nada debió llegar al libro
	assert.Empty(t, f.store.Moves())
}

func TestIssue_FIFO_CruzaCapas(t *testing.T) {
	f := newFixture(t, costing.PolicyFIFO)
	f.receive(t, "MAIN", 10, 5.00)
	f.receive(t, "MAIN", 10, 7.00)

	res, err := f.processor.Issue(context.Background(), appcosting.IssueInput{
		SKU: "WIDGET", WarehouseCode: "MAIN",
		Quantity:  decimal.NewFromInt(15),
		Reference: "SO-001",
	})
	require.NoError(t, err)

	assert.True(t, res.CostUsed.Equal(decimal.RequireFromString("5.6667")),
		"costo realizado = %s", res.CostUsed)
	require.Len(t, res.Consumed, 2)
	assert.True(t, res.Consumed[0].Quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, res.Consumed[1].Quantity.Equal(decimal.NewFromInt(5)))

	layers := f.store.Layers(f.item.ID, f.main.ID)
	require.Len(t, layers, 2)
	assert.True(t, layers[0].RemainingQty.IsZero())
	assert.True(t, layers[1].RemainingQty.Equal(decimal.NewFromInt(5)))

	level := f.store.Level(f.item.ID, f.main.ID)
	assert.True(t, level.OnHand.Equal(decimal.NewFromInt(5)))
}

func TestIssue_PromedioMovil(t *testing.T) {
	f := newFixture(t, costing.PolicyMovingAverage)
	f.receive(t, "MAIN", 10, 5.00)
	f.receive(t, "MAIN", 10, 7.00)

	res, err := f.processor.Issue(context.Background(), appcosting.IssueInput{
		SKU: "WIDGET", WarehouseCode: "MAIN",
		Quantity: decimal.NewFromInt(4),
	})
	require.NoError(t, err)
	assert.True(t, res.CostUsed.Equal(decimal.NewFromInt(6)))
	assert.Empty(t, res.Consumed)

	// La salida descuenta cantidad pero no mueve el promedio
	st := f.store.AverageState(f.item.ID, f.main.ID)
	require.NotNil(t, st)
	assert.True(t, st.OnHandQty.Equal(decimal.NewFromInt(16)))
	assert.True(t, st.AvgCost.Equal(decimal.NewFromInt(6)))
}

// Con stock insuficiente la salida es todo-o-nada: ni movimiento OUT, ni
// capas tocadas, ni saldo alterado.
func TestIssue_StockInsuficiente(t *testing.T) {
	for _, policy := range []costing.Policy{costing.PolicyFIFO, costing.PolicyMovingAverage} {
		t.Run(policy.String(), func(t *testing.T) {
			f := newFixture(t, policy)
			f.receive(t, "MAIN", 5, 5.00)

			_, err := f.processor.Issue(context.Background(), appcosting.IssueInput{
				SKU: "WIDGET", WarehouseCode: "MAIN",
				Quantity: decimal.NewFromInt(8),
			})
			require.ErrorIs(t, err, domain.ErrInsufficientStock)

			moves := f.store.Moves()
			require.Len(t, moves, 1) // solo la recepción
			assert.Equal(t, entity.MoveTypeIN, moves[0].Type)
			assert.True(t, f.store.Level(f.item.ID, f.main.ID).OnHand.Equal(decimal.NewFromInt(5)))

			if policy == costing.PolicyFIFO {
				layers := f.store.Layers(f.item.ID, f.main.ID)
				require.Len(t, layers, 1)
				assert.True(t, layers[0].RemainingQty.Equal(decimal.NewFromInt(5)))
			}
		})
	}
}

func TestTransfer(t *testing.T) {
	f := newFixture(t, costing.PolicyFIFO)
	f.receive(t, "MAIN", 10, 5.00)

	res, err := f.processor.Transfer(context.Background(), appcosting.TransferInput{
		SKU: "WIDGET", FromCode: "MAIN", ToCode: "ALT",
		Quantity:  decimal.NewFromInt(4),
		Reference: "TR-001",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.OutMoveID)
	assert.NotEmpty(t, res.InMoveID)
	assert.True(t, res.CostUsed.Equal(decimal.NewFromInt(5)))

	// Dos entradas en el libro: OUT en origen, IN en destino al costo realizado
	moves := f.store.Moves()
	require.Len(t, moves, 3)

	assert.True(t, f.store.Level(f.item.ID, f.main.ID).OnHand.Equal(decimal.NewFromInt(6)))
	assert.True(t, f.store.Level(f.item.ID, f.alt.ID).OnHand.Equal(decimal.NewFromInt(4)))

	destino := f.store.Layers(f.item.ID, f.alt.ID)
	require.Len(t, destino, 1)
	assert.True(t, destino[0].UnitCost.Equal(decimal.NewFromInt(5)))
	assert.True(t, destino[0].RemainingQty.Equal(decimal.NewFromInt(4)))
}

func TestTransfer_Errores(t *testing.T) {
	f := newFixture(t, costing.PolicyFIFO)
	f.receive(t, "MAIN", 10, 5.00)
	ctx := context.Background()

	_, err := f.processor.Transfer(ctx, appcosting.TransferInput{
		SKU: "WIDGET", FromCode: "MAIN", ToCode: "MAIN",
		Quantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.processor.Transfer(ctx, appcosting.TransferInput{
		SKU: "WIDGET", FromCode: "MAIN", ToCode: "NO-EXISTE",
		Quantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.processor.Transfer(ctx, appcosting.TransferInput{
		SKU: "WIDGET", FromCode: "MAIN", ToCode: "ALT",
		Quantity: decimal.NewFromInt(50),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// El traslado fallido no dejó rastro en destino
	assert.True(t, f.store.Level(f.item.ID, f.alt.ID).OnHand.IsZero())
	assert.True(t, f.store.Level(f.item.ID, f.main.ID).OnHand.Equal(decimal.NewFromInt(10)))
}

// Si cualquier escritura de la transacción falla, no debe quedar ni el
// movimiento ni la mutación del tracker: el libro y los trackers avanzan
// juntos o no avanzan.
func TestReceive_Atomicidad(t *testing.T) {
	f := newFixture(t, costing.PolicyFIFO)
	falla := errors.New("falla inyectada")

	// upsert_level es la última escritura del flujo: el movimiento y la capa
	// ya están staged cuando falla.
	f.store.Fault = func(op string) error {
		if op == "upsert_level" {
			return falla
		}
		return nil
	}

	_, err := f.processor.Receive(context.Background(), appcosting.ReceiveInput{
		SKU: "WIDGET", WarehouseCode: "MAIN",
		Quantity: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(5),
	})
	require.ErrorIs(t, err, falla)

	assert.Empty(t, f.store.Moves())
	assert.Empty(t, f.store.Layers(f.item.ID, f.main.ID))
	assert.True(t, f.store.Level(f.item.ID, f.main.ID).OnHand.IsZero())

	// Sin la falla, la misma operación procede
	f.store.Fault = nil
	f.receive(t, "MAIN", 10, 5.00)
	require.Len(t, f.store.Moves(), 1)
}

// Salidas concurrentes sobre el mismo par se serializan: con stock para
// exactamente N salidas, N tienen éxito y el resto falla por stock
// insuficiente, sin dejar el saldo negativo.
func TestIssue_Concurrencia(t *testing.T) {
	f := newFixture(t, costing.PolicyFIFO)
	f.receive(t, "MAIN", 100, 5.00) // alcanza para 20 salidas de 5

	const workers = 25
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.processor.Issue(context.Background(), appcosting.IssueInput{
				SKU: "WIDGET", WarehouseCode: "MAIN",
				Quantity: decimal.NewFromInt(5),
			})
		}(i)
	}
	wg.Wait()

	exitos, fallos := 0, 0
	for _, err := range errs {
		if err == nil {
			exitos++
		} else {
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
			fallos++
		}
	}
	assert.Equal(t, 20, exitos)
	assert.Equal(t, 5, fallos)

	level := f.store.Level(f.item.ID, f.main.ID)
	assert.True(t, level.OnHand.IsZero(), "saldo final = %s", level.OnHand)
	assert.True(t, costing.LayersOnHand(f.store.Layers(f.item.ID, f.main.ID)).IsZero())
}

func TestPoliticaPorDefecto(t *testing.T) {
	f := newFixture(t, costing.PolicyMovingAverage)

	// Sin política explícita usa la del procesador
	res := f.receive(t, "MAIN", 10, 5.00)
	assert.Equal(t, costing.PolicyMovingAverage, res.Method)

	// La política explícita del input tiene prioridad
	res2, err := f.processor.Receive(context.Background(), appcosting.ReceiveInput{
		SKU: "WIDGET", WarehouseCode: "ALT",
		Quantity: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(2),
		Policy: costing.PolicyFIFO,
	})
	require.NoError(t, err)
	assert.Equal(t, costing.PolicyFIFO, res2.Method)
	assert.NotEmpty(t, res2.LayerID)
}
