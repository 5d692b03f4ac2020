package repository

import (
	"context"

	"comerciopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SucursalRepository defines CRUD operations for branches.
type SucursalRepository interface {
	Crear(ctx context.Context, s *model.Sucursal) error
	Listar(ctx context.Context, incluirInactivas bool) ([]model.Sucursal, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Sucursal, error)
	Actualizar(ctx context.Context, s *model.Sucursal) error
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type sucursalRepository struct{ db *gorm.DB }

func NewSucursalRepository(db *gorm.DB) SucursalRepository {
	return &sucursalRepository{db: db}
}

func (r *sucursalRepository) Crear(ctx context.Context, s *model.Sucursal) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sucursalRepository) Listar(ctx context.Context, incluirInactivas bool) ([]model.Sucursal, error) {
	var list []model.Sucursal
	q := r.db.WithContext(ctx)
	if !incluirInactivas {
		q = q.Where("activo = true")
	}
	err := q.Order("nombre_sucursal asc").Find(&list).Error
	return list, err
}

func (r *sucursalRepository) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Sucursal, error) {
	var s model.Sucursal
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sucursalRepository) Actualizar(ctx context.Context, s *model.Sucursal) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *sucursalRepository) Desactivar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Sucursal{}).Where("id = ?", id).Update("activo", false).Error
}
