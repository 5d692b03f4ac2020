package service

import (
	"context"

	"comerciopos/internal/dto"
	"comerciopos/internal/model"
	"comerciopos/internal/repository"

	"github.com/google/uuid"
)

type SucursalService interface {
	Crear(ctx context.Context, req dto.CrearSucursalRequest) (*dto.SucursalResponse, error)
	Listar(ctx context.Context, incluirInactivas bool) ([]dto.SucursalResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.SucursalResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarSucursalRequest) (*dto.SucursalResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type sucursalService struct {
	repo repository.SucursalRepository
}

func NewSucursalService(repo repository.SucursalRepository) SucursalService {
	return &sucursalService{repo: repo}
}

func (s *sucursalService) Crear(ctx context.Context, req dto.CrearSucursalRequest) (*dto.SucursalResponse, error) {
	// Coordinates come straight from the map picker; stored verbatim.
	suc := &model.Sucursal{
		NombreSucursal: req.NombreSucursal,
		Lat:            req.Position.Lat,
		Lng:            req.Position.Lng,
		Direccion:      req.Direccion,
		Ciudad:         req.Ciudad,
		CodigoPostal:   req.CodigoPostal,
		Telefono:       req.Telefono,
		Activo:         true,
	}
	if err := s.repo.Crear(ctx, suc); err != nil {
		return nil, err
	}
	return sucursalToResponse(suc), nil
}

func (s *sucursalService) Listar(ctx context.Context, incluirInactivas bool) ([]dto.SucursalResponse, error) {
	sucursales, err := s.repo.Listar(ctx, incluirInactivas)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SucursalResponse, 0, len(sucursales))
	for i := range sucursales {
		out = append(out, *sucursalToResponse(&sucursales[i]))
	}
	return out, nil
}

func (s *sucursalService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.SucursalResponse, error) {
	suc, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sucursalToResponse(suc), nil
}

func (s *sucursalService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarSucursalRequest) (*dto.SucursalResponse, error) {
	suc, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.NombreSucursal != nil {
		suc.NombreSucursal = *req.NombreSucursal
	}
	if req.Position != nil {
		suc.Lat = req.Position.Lat
		suc.Lng = req.Position.Lng
	}
	if req.Direccion != nil {
		suc.Direccion = req.Direccion
	}
	if req.Ciudad != nil {
		suc.Ciudad = req.Ciudad
	}
	if req.CodigoPostal != nil {
		suc.CodigoPostal = req.CodigoPostal
	}
	if req.Telefono != nil {
		suc.Telefono = req.Telefono
	}
	if req.Activo != nil {
		suc.Activo = *req.Activo
	}
	if err := s.repo.Actualizar(ctx, suc); err != nil {
		return nil, err
	}
	return sucursalToResponse(suc), nil
}

func (s *sucursalService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Desactivar(ctx, id)
}

func sucursalToResponse(s *model.Sucursal) *dto.SucursalResponse {
	return &dto.SucursalResponse{
		ID:             s.ID.String(),
		NombreSucursal: s.NombreSucursal,
		Position:       dto.PositionDTO{Lat: s.Lat, Lng: s.Lng},
		Direccion:      s.Direccion,
		Ciudad:         s.Ciudad,
		CodigoPostal:   s.CodigoPostal,
		Telefono:       s.Telefono,
		Activo:         s.Activo,
	}
}
