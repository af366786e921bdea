package http

import (
	"github.com/gofiber/fiber/v2"

	appcosting "github.com/jhoicas/kardex-api/internal/application/costing"
	"github.com/jhoicas/kardex-api/internal/application/dto"
)

// InventoryHandler maneja las peticiones HTTP de movimientos de inventario.
type InventoryHandler struct {
	processor *appcosting.MovementProcessor
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(processor *appcosting.MovementProcessor) *InventoryHandler {
	return &InventoryHandler{processor: processor}
}

// Receive godoc
// @Summary      Recepción de stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveRequest  true  "sku, wh, qty, unit_cost, ref, lot opcional"
// @Success      201   {object}  dto.ReceiveResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/receive [post]
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.processor.Receive(c.Context(), appcosting.ReceiveInput{
		SKU:           in.SKU,
		WarehouseCode: in.WarehouseCode,
		Quantity:      in.Quantity,
		UnitCost:      in.UnitCost,
		Reference:     in.Reference,
		Note:          in.Note,
		Lot:           in.Lot,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReceiveResponse{
		Method:     result.Method.String(),
		MoveID:     result.MoveID,
		LayerID:    result.LayerID,
		NewAverage: result.NewAverage,
	})
}

// Issue godoc
// @Summary      Salida de stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueRequest  true  "sku, wh, qty, ref"
// @Success      201   {object}  dto.IssueResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/issue [post]
func (h *InventoryHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.processor.Issue(c.Context(), appcosting.IssueInput{
		SKU:           in.SKU,
		WarehouseCode: in.WarehouseCode,
		Quantity:      in.Quantity,
		Reference:     in.Reference,
		Note:          in.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.IssueResponse{
		Method:   result.Method.String(),
		MoveID:   result.MoveID,
		CostUsed: result.CostUsed,
	}
	for _, lc := range result.Consumed {
		resp.Consumed = append(resp.Consumed, dto.ConsumedLayerDTO{
			LayerID:  lc.LayerID,
			Quantity: lc.Quantity,
			UnitCost: lc.UnitCost,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Transfer godoc
// @Summary      Traslado entre bodegas
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "sku, from_wh, to_wh, qty, ref"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfer [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.processor.Transfer(c.Context(), appcosting.TransferInput{
		SKU:       in.SKU,
		FromCode:  in.FromCode,
		ToCode:    in.ToCode,
		Quantity:  in.Quantity,
		Reference: in.Reference,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		Method:    result.Method.String(),
		OutMoveID: result.OutMoveID,
		InMoveID:  result.InMoveID,
		CostUsed:  result.CostUsed,
	})
}
