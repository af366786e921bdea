package repository

import "github.com/jhoicas/kardex-api/internal/domain/entity"

// ItemRepository define el puerto de persistencia para Item (DIP).
// El motor de costeo solo resuelve SKU -> referencia interna; el resto del
// catálogo lo administran colaboradores externos.
type ItemRepository interface {
	Create(item *entity.Item) error
	GetByID(id string) (*entity.Item, error)
	GetBySKU(sku string) (*entity.Item, error)
	List(limit, offset int) ([]*entity.Item, error)
}
