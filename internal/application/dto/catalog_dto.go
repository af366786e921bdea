package dto

import "time"

// CreateItemRequest body para POST /api/items.
type CreateItemRequest struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
	UOM  string `json:"uom,omitempty"`
}

// ItemResponse representación pública de un item.
type ItemResponse struct {
	ID        string    `json:"id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	UOM       string    `json:"uom"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateWarehouseRequest body para POST /api/warehouses.
type CreateWarehouseRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// WarehouseResponse representación pública de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
