package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// El motor de costeo los devuelve tal cual; nunca aplica reintentos ni
// resultados parciales: o se confirma libro + tracker, o nada.
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidQuantity     = errors.New("cantidad inválida")
	ErrInvalidCost         = errors.New("costo unitario inválido")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia")
)
