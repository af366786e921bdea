package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación de WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// Create persiste una bodega. Código duplicado devuelve ErrDuplicate.
func (r *WarehouseRepo) Create(wh *entity.Warehouse) error {
	if wh.ID == "" {
		wh.ID = uuid.New().String()
	}
	query := `
		INSERT INTO warehouses (id, code, name, created_at)
		VALUES ($1, $2, $3, now())`
	_, err := r.q.Exec(context.Background(), query, wh.ID, wh.Code, wh.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create warehouse: %w", err)
	}
	return nil
}

// GetByID obtiene una bodega por ID (nil si no existe).
func (r *WarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	return r.getBy("id", id)
}

// GetByCode resuelve un código de bodega (nil si no existe).
func (r *WarehouseRepo) GetByCode(code string) (*entity.Warehouse, error) {
	return r.getBy("code", code)
}

func (r *WarehouseRepo) getBy(col, val string) (*entity.Warehouse, error) {
	query := fmt.Sprintf(`SELECT id, code, name, created_at FROM warehouses WHERE %s = $1`, col)
	var wh entity.Warehouse
	err := r.q.QueryRow(context.Background(), query, val).Scan(
		&wh.ID, &wh.Code, &wh.Name, &wh.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &wh, nil
}

// List lista bodegas ordenadas por código.
func (r *WarehouseRepo) List(limit, offset int) ([]*entity.Warehouse, error) {
	query := `
		SELECT id, code, name, created_at
		FROM warehouses ORDER BY code ASC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		var wh entity.Warehouse
		if err := rows.Scan(&wh.ID, &wh.Code, &wh.Name, &wh.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, &wh)
	}
	return list, rows.Err()
}
