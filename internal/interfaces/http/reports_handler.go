package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	appcosting "github.com/jhoicas/kardex-api/internal/application/costing"
	"github.com/jhoicas/kardex-api/internal/application/dto"
)

// ReportsHandler maneja los reportes de saldo, valorización y kardex.
type ReportsHandler struct {
	reports *appcosting.ReportUseCase
}

// NewReportsHandler construye el handler.
func NewReportsHandler(reports *appcosting.ReportUseCase) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// parseAsOf interpreta el query param as_of (RFC3339 o fecha YYYY-MM-DD).
// Vacío = ahora (nil).
func parseAsOf(c *fiber.Ctx) (*time.Time, error) {
	raw := c.Query("as_of")
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	// Fecha sin hora: incluir el día completo
	t = t.Add(24*time.Hour - time.Nanosecond)
	return &t, nil
}

// Balance godoc
// @Summary      Saldo de inventario por item y bodega
// @Tags         reports
// @Produce      json
// @Param        as_of  query  string  false  "Fecha de corte (RFC3339 o YYYY-MM-DD). Vacío = ahora."
// @Param        sku    query  string  false  "Filtrar por SKU"
// @Param        wh     query  string  false  "Filtrar por código de bodega"
// @Success      200  {array}   dto.BalanceRowDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/stock/balance [get]
func (h *ReportsHandler) Balance(c *fiber.Ctx) error {
	asOf, err := parseAsOf(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "as_of inválido"})
	}
	rows, err := h.reports.Balance(c.Context(), appcosting.BalanceQuery{
		AsOf:          asOf,
		SKU:           c.Query("sku"),
		WarehouseCode: c.Query("wh"),
	})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.BalanceRowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.BalanceRowDTO{SKU: r.SKU, WarehouseCode: r.WarehouseCode, OnHand: r.OnHand})
	}
	return c.JSON(out)
}

// Valuation godoc
// @Summary      Valorización de inventario (FIFO o promedio)
// @Description  Reconstruye el estado por replay del libro hasta la fecha de corte.
// @Tags         reports
// @Produce      json
// @Param        method  query  string  false  "fifo | avg | moving_avg (default fifo)"
// @Param        as_of   query  string  false  "Fecha de corte. Vacío = ahora."
// @Param        sku     query  string  false  "Filtrar por SKU"
// @Param        wh      query  string  false  "Filtrar por código de bodega"
// @Success      200  {array}   dto.ValuationRowDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/stock/valuation [get]
func (h *ReportsHandler) Valuation(c *fiber.Ctx) error {
	asOf, err := parseAsOf(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "as_of inválido"})
	}
	method := c.Query("method", "fifo")
	rows, err := h.reports.Valuation(c.Context(), appcosting.ValuationQuery{
		AsOf:          asOf,
		Method:        method,
		SKU:           c.Query("sku"),
		WarehouseCode: c.Query("wh"),
	})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ValuationRowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ValuationRowDTO{
			SKU:           r.SKU,
			WarehouseCode: r.WarehouseCode,
			OnHand:        r.OnHand,
			AvgCost:       r.AvgCost,
			StockValue:    r.StockValue,
		})
	}
	return c.JSON(out)
}

// StockCard godoc
// @Summary      Kardex de un SKU (movimientos cronológicos)
// @Tags         reports
// @Produce      json
// @Param        sku    query  string  true   "SKU"
// @Param        wh     query  string  false  "Código de bodega"
// @Param        from   query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to     query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit  query  int     false  "Máximo de filas (default 200)"
// @Success      200  {array}   dto.StockCardRowDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/card [get]
func (h *ReportsHandler) StockCard(c *fiber.Ctx) error {
	sku := c.Query("sku")
	if sku == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sku es obligatorio"})
	}
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido"})
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido"})
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}

	rows, err := h.reports.StockCard(c.Context(), appcosting.StockCardQuery{
		SKU:           sku,
		WarehouseCode: c.Query("wh"),
		From:          from,
		To:            to,
		Limit:         c.QueryInt("limit", 200),
	})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockCardRowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.StockCardRowDTO{
			MovedAt:       r.MovedAt,
			Type:          r.Type,
			SKU:           r.SKU,
			WarehouseCode: r.WarehouseCode,
			Quantity:      r.Quantity,
			UnitCost:      r.UnitCost,
			Reference:     r.Reference,
			Note:          r.Note,
			Lot:           r.Lot,
		})
	}
	return c.JSON(out)
}
