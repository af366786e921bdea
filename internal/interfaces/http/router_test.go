package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/catalog"
	appcosting "github.com/jhoicas/kardex-api/internal/application/costing"
	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/domain/costing"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/kardex-api/internal/interfaces/http"
)

// buildTestApp monta la API completa sobre el backend en memoria, con un item
// y dos bodegas sembrados.
func buildTestApp(t *testing.T, policy costing.Policy) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	itemRepo := memory.NewItemRepository(store)
	whRepo := memory.NewWarehouseRepository(store)

	require.NoError(t, itemRepo.Create(&entity.Item{SKU: "WIDGET", Name: "Widget"}))
	require.NoError(t, whRepo.Create(&entity.Warehouse{Code: "MAIN", Name: "Principal"}))
	require.NoError(t, whRepo.Create(&entity.Warehouse{Code: "ALT", Name: "Secundaria"}))

	processor := appcosting.NewMovementProcessor(
		memory.NewTxRunner(store), itemRepo, whRepo, policy, nil,
	)
	reports := appcosting.NewReportUseCase(
		memory.NewReportRepository(store),
		memory.NewStockMoveRepository(store),
		itemRepo, whRepo,
	)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Processor: processor,
		Reports:   reports,
		CatalogUC: catalog.NewUseCase(itemRepo, whRepo),
	})
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, app *fiber.App, path string, out any) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestAPI_FlujoCompleto(t *testing.T) {
	app := buildTestApp(t, costing.PolicyFIFO)

	// Recepción
	resp := postJSON(t, app, "/api/inventory/receive", dto.ReceiveRequest{
		SKU: "WIDGET", WarehouseCode: "MAIN",
		Quantity: decimal.NewFromInt(10), UnitCost: decimal.RequireFromString("5.00"),
		Reference: "GR-001",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rec dto.ReceiveResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.Equal(t, "FIFO", rec.Method)
	assert.NotEmpty(t, rec.LayerID)

	resp = postJSON(t, app, "/api/inventory/receive", dto.ReceiveRequest{
		SKU: "WIDGET", WarehouseCode: "MAIN",
		Quantity: decimal.NewFromInt(10), UnitCost: decimal.RequireFromString("7.00"),
		Reference: "GR-002",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Salida que cruza capas
	resp = postJSON(t, app, "/api/inventory/issue", dto.IssueRequest{
		SKU: "WIDGET", WarehouseCode: "MAIN",
		Quantity: decimal.NewFromInt(15), Reference: "SO-001",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var iss dto.IssueResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&iss))
	assert.Equal(t, "5.6667", iss.CostUsed.String())
	assert.Len(t, iss.Consumed, 2)

	// Traslado
	resp = postJSON(t, app, "/api/inventory/transfer", dto.TransferRequest{
		SKU: "WIDGET", FromCode: "MAIN", ToCode: "ALT",
		Quantity: decimal.NewFromInt(2), Reference: "TR-001",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Saldo
	var balance []dto.BalanceRowDTO
	resp = getJSON(t, app, "/api/reports/stock/balance", &balance)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, balance, 2)
	assert.Equal(t, "ALT", balance[0].WarehouseCode)
	assert.Equal(t, "2", balance[0].OnHand.String())
	assert.Equal(t, "MAIN", balance[1].WarehouseCode)
	assert.Equal(t, "3", balance[1].OnHand.String())

	// Valorización FIFO
	var valuation []dto.ValuationRowDTO
	resp = getJSON(t, app, "/api/reports/stock/valuation?method=fifo", &valuation)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, valuation, 2)

	// Kardex
	var card []dto.StockCardRowDTO
	resp = getJSON(t, app, "/api/stock/card?sku=WIDGET", &card)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, card, 5) // 2 IN + 1 OUT + traslado (OUT + IN)
}

func TestAPI_ErroresHTTP(t *testing.T) {
	app := buildTestApp(t, costing.PolicyFIFO)

	// Cantidad inválida -> 400
	resp := postJSON(t, app, "/api/inventory/receive", dto.ReceiveRequest{
		SKU: "WIDGET", WarehouseCode: "MAIN",
		Quantity: decimal.Zero, UnitCost: decimal.NewFromInt(5),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// SKU inexistente -> 404
	resp = postJSON(t, app, "/api/inventory/receive", dto.ReceiveRequest{
		SKU: "NO-EXISTE", WarehouseCode: "MAIN",
		Quantity: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(5),
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Stock insuficiente -> 409
	resp = postJSON(t, app, "/api/inventory/issue", dto.IssueRequest{
		SKU: "WIDGET", WarehouseCode: "MAIN", Quantity: decimal.NewFromInt(5),
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)

	// Método de valorización desconocido -> 400
	resp = getJSON(t, app, "/api/reports/stock/valuation?method=lifo", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Kardex sin sku -> 400
	resp = getJSON(t, app, "/api/stock/card", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Catalogo(t *testing.T) {
	app := buildTestApp(t, costing.PolicyFIFO)

	resp := postJSON(t, app, "/api/items", dto.CreateItemRequest{SKU: "BOLT", Name: "Tornillo"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var item dto.ItemResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "EA", item.UOM)

	// SKU duplicado -> 409
	resp = postJSON(t, app, "/api/items", dto.CreateItemRequest{SKU: "BOLT", Name: "Otro"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var items []dto.ItemResponse
	resp = getJSON(t, app, "/api/items", &items)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, items, 2) // WIDGET sembrado + BOLT
}
