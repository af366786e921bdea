package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveRequest body para POST /api/inventory/receive.
type ReceiveRequest struct {
	SKU           string          `json:"sku"`
	WarehouseCode string          `json:"wh"`
	Quantity      decimal.Decimal `json:"qty"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Reference     string          `json:"ref"`
	Note          string          `json:"note,omitempty"`
	Lot           string          `json:"lot,omitempty"`
}

// ReceiveResponse resultado de una recepción.
type ReceiveResponse struct {
	Method     string           `json:"method"`
	MoveID     string           `json:"move_id,omitempty"`
	LayerID    string           `json:"layer_id,omitempty"`
	NewAverage *decimal.Decimal `json:"new_avg,omitempty"`
}

// IssueRequest body para POST /api/inventory/issue.
type IssueRequest struct {
	SKU           string          `json:"sku"`
	WarehouseCode string          `json:"wh"`
	Quantity      decimal.Decimal `json:"qty"`
	Reference     string          `json:"ref"`
	Note          string          `json:"note,omitempty"`
}

// ConsumedLayerDTO desglose de consumo por capa (FIFO).
type ConsumedLayerDTO struct {
	LayerID  string          `json:"layer_id"`
	Quantity decimal.Decimal `json:"qty"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// IssueResponse resultado de una salida.
type IssueResponse struct {
	Method   string             `json:"method"`
	MoveID   string             `json:"move_id"`
	CostUsed decimal.Decimal    `json:"cost_used"`
	Consumed []ConsumedLayerDTO `json:"consumed,omitempty"`
}

// TransferRequest body para POST /api/inventory/transfer.
type TransferRequest struct {
	SKU       string          `json:"sku"`
	FromCode  string          `json:"from_wh"`
	ToCode    string          `json:"to_wh"`
	Quantity  decimal.Decimal `json:"qty"`
	Reference string          `json:"ref"`
}

// TransferResponse resultado de un traslado.
type TransferResponse struct {
	Method    string          `json:"method"`
	OutMoveID string          `json:"out_move_id"`
	InMoveID  string          `json:"in_move_id"`
	CostUsed  decimal.Decimal `json:"cost_used"`
}

// BalanceRowDTO una fila del reporte de saldos.
type BalanceRowDTO struct {
	SKU           string          `json:"sku"`
	WarehouseCode string          `json:"wh"`
	OnHand        decimal.Decimal `json:"onhand"`
}

// ValuationRowDTO una fila del reporte de valorización.
type ValuationRowDTO struct {
	SKU           string          `json:"sku"`
	WarehouseCode string          `json:"wh"`
	OnHand        decimal.Decimal `json:"onhand"`
	AvgCost       decimal.Decimal `json:"avg_cost"`
	StockValue    decimal.Decimal `json:"stock_value"`
}

// StockCardRowDTO una fila del kardex.
type StockCardRowDTO struct {
	MovedAt       time.Time       `json:"moved_at"`
	Type          string          `json:"move_type"`
	SKU           string          `json:"sku"`
	WarehouseCode string          `json:"wh"`
	Quantity      decimal.Decimal `json:"qty"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Reference     string          `json:"ref,omitempty"`
	Note          string          `json:"note,omitempty"`
	Lot           string          `json:"lot,omitempty"`
}
