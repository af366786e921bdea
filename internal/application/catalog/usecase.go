// Package catalog expone el CRUD mínimo de items y bodegas que el motor de
// costeo necesita para resolver SKUs y códigos. El catálogo completo
// (atributos, precios, proveedores) es responsabilidad de otros sistemas.
package catalog

import (
	"context"
	"strings"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// UseCase casos de uso de catálogo (items y bodegas).
type UseCase struct {
	itemRepo      repository.ItemRepository
	warehouseRepo repository.WarehouseRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(itemRepo repository.ItemRepository, warehouseRepo repository.WarehouseRepository) *UseCase {
	return &UseCase{itemRepo: itemRepo, warehouseRepo: warehouseRepo}
}

// CreateItem valida y registra un item nuevo.
func (uc *UseCase) CreateItem(ctx context.Context, sku, name, uom string) (*entity.Item, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, domain.ErrInvalidInput
	}
	if uom == "" {
		uom = "EA"
	}
	item := &entity.Item{SKU: sku, Name: name, UOM: uom}
	if err := uc.itemRepo.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems lista items paginados.
func (uc *UseCase) ListItems(ctx context.Context, limit, offset int) ([]*entity.Item, error) {
	return uc.itemRepo.List(limit, offset)
}

// CreateWarehouse valida y registra una bodega nueva.
func (uc *UseCase) CreateWarehouse(ctx context.Context, code, name string) (*entity.Warehouse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidInput
	}
	wh := &entity.Warehouse{Code: code, Name: name}
	if err := uc.warehouseRepo.Create(wh); err != nil {
		return nil, err
	}
	return wh, nil
}

// ListWarehouses lista bodegas paginadas.
func (uc *UseCase) ListWarehouses(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	return uc.warehouseRepo.List(limit, offset)
}
