package entity

import "time"

// Item representa una referencia de inventario (SKU). La identidad es el SKU;
// nombre y unidad de medida los administra el catálogo, no el motor de costeo.
type Item struct {
	ID        string
	SKU       string
	Name      string
	UOM       string // unidad de medida (EA, KG, M, ...)
	CreatedAt time.Time
}
