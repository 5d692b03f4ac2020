package service

import (
	"context"
	"errors"

	"comerciopos/internal/dto"
	"comerciopos/internal/model"
	"comerciopos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrCategoriaDuplicada = errors.New("ya existe una categoria con ese nombre")

type CategoriaService interface {
	Crear(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error)
	Listar(ctx context.Context, incluirInactivas bool) ([]dto.CategoriaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (*dto.CategoriaResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

func (s *categoriaService) Crear(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error) {
	// Name uniqueness is case-insensitive.
	if existente, err := s.repo.ObtenerPorNombre(ctx, req.Nombre); err == nil && existente != nil {
		return nil, ErrCategoriaDuplicada
	}
	c := &model.Categoria{Nombre: req.Nombre, Descripcion: req.Descripcion, Activo: true}
	if err := s.repo.Crear(ctx, c); err != nil {
		return nil, err
	}
	return categoriaToResponse(c), nil
}

func (s *categoriaService) Listar(ctx context.Context, incluirInactivas bool) ([]dto.CategoriaResponse, error) {
	categorias, err := s.repo.Listar(ctx, incluirInactivas)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoriaResponse, 0, len(categorias))
	for i := range categorias {
		out = append(out, *categoriaToResponse(&categorias[i]))
	}
	return out, nil
}

func (s *categoriaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (*dto.CategoriaResponse, error) {
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	if req.Nombre != nil && *req.Nombre != c.Nombre {
		if existente, err := s.repo.ObtenerPorNombre(ctx, *req.Nombre); err == nil && existente != nil && existente.ID != id {
			return nil, ErrCategoriaDuplicada
		}
		c.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		c.Descripcion = req.Descripcion
	}
	if req.Activo != nil {
		c.Activo = *req.Activo
	}
	if err := s.repo.Actualizar(ctx, c); err != nil {
		return nil, err
	}
	return categoriaToResponse(c), nil
}

func (s *categoriaService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Desactivar(ctx, id)
}

func categoriaToResponse(c *model.Categoria) *dto.CategoriaResponse {
	return &dto.CategoriaResponse{
		ID:          c.ID,
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		Activo:      c.Activo,
	}
}
