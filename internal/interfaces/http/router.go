package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/catalog"
	appcosting "github.com/jhoicas/kardex-api/internal/application/costing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Processor *appcosting.MovementProcessor
	Reports   *appcosting.ReportUseCase
	CatalogUC *catalog.UseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Catálogo (items y bodegas)
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	items := api.Group("/items")
	items.Post("/", catalogHandler.CreateItem)
	items.Get("/", catalogHandler.ListItems)
	warehouses := api.Group("/warehouses")
	warehouses.Post("/", catalogHandler.CreateWarehouse)
	warehouses.Get("/", catalogHandler.ListWarehouses)

	// Movimientos de inventario
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Processor)
	invGroup.Post("/receive", inventoryHandler.Receive)
	invGroup.Post("/issue", inventoryHandler.Issue)
	invGroup.Post("/transfer", inventoryHandler.Transfer)

	// Reportes
	reportsHandler := NewReportsHandler(deps.Reports)
	reports := api.Group("/reports")
	reports.Get("/stock/balance", reportsHandler.Balance)
	reports.Get("/stock/valuation", reportsHandler.Valuation)
	api.Get("/stock/card", reportsHandler.StockCard)
}
