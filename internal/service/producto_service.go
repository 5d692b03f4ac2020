package service

import (
	"context"
	"errors"
	"fmt"

	"comerciopos/internal/dto"
	"comerciopos/internal/events"
	"comerciopos/internal/model"
	"comerciopos/internal/repository"
	"comerciopos/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrCodigoBarrasDuplicado: another product already carries that barcode.
var ErrCodigoBarrasDuplicado = errors.New("ya existe un producto con ese codigo de barras")

// CategoriaNoEncontradaError identifies a dangling category reference.
type CategoriaNoEncontradaError struct {
	CategoriaID string
}

func (e *CategoriaNoEncontradaError) Error() string {
	return fmt.Sprintf("categoria %s no encontrada", e.CategoriaID)
}

type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	ObtenerPorBarcode(ctx context.Context, barcode string) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	// ListarActivos serves the checkout catalog: active products with stock,
	// through the Redis cache.
	ListarActivos(ctx context.Context) ([]dto.ProductoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
	// EliminarDefinitivo removes the row permanently. Sale history survives via
	// the denormalized item snapshots.
	EliminarDefinitivo(ctx context.Context, id uuid.UUID) error
	AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error)
}

type productoService struct {
	repo           repository.ProductoRepository
	categoriaRepo  repository.CategoriaRepository
	movimientoRepo repository.MovimientoStockRepository
	bus            *events.Bus
	catalogo       CatalogoCache
	dispatcher     *worker.Dispatcher
}

func NewProductoService(
	repo repository.ProductoRepository,
	categoriaRepo repository.CategoriaRepository,
	movimientoRepo repository.MovimientoStockRepository,
	bus *events.Bus,
	catalogo CatalogoCache,
	dispatcher *worker.Dispatcher,
) ProductoService {
	return &productoService{
		repo:           repo,
		categoriaRepo:  categoriaRepo,
		movimientoRepo: movimientoRepo,
		bus:            bus,
		catalogo:       catalogo,
		dispatcher:     dispatcher,
	}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	categoriaID, err := uuid.Parse(req.CategoriaID)
	if err != nil {
		return nil, fmt.Errorf("categoria_id inválido: %w", err)
	}
	if _, err := s.categoriaRepo.ObtenerPorID(ctx, categoriaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &CategoriaNoEncontradaError{CategoriaID: req.CategoriaID}
		}
		return nil, err
	}
	if existente, err := s.repo.FindByBarcode(ctx, req.CodigoBarras); err == nil && existente != nil {
		return nil, ErrCodigoBarrasDuplicado
	}

	p := &model.Producto{
		CodigoBarras:  req.CodigoBarras,
		Nombre:        req.Nombre,
		Descripcion:   req.Descripcion,
		CategoriaID:   categoriaID,
		Proveedor:     req.Proveedor,
		PrecioCompra:  req.PrecioCompra,
		PrecioPublico: req.PrecioPublico,
		Cantidad:      req.Cantidad,
		MinimoStock:   req.MinimoStock,
		ImagenURL:     req.ImagenURL,
		Activo:        true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidar(ctx)
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ProductoNoEncontradoError{ProductoID: id.String()}
		}
		return nil, err
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) ObtenerPorBarcode(ctx context.Context, barcode string) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ProductoNoEncontradoError{ProductoID: barcode}
		}
		return nil, err
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productoService) ListarActivos(ctx context.Context) ([]dto.ProductoResponse, error) {
	if s.catalogo != nil {
		if cached, ok := s.catalogo.GetActivos(ctx); ok {
			return cached, nil
		}
	}
	productos, err := s.repo.ListActivos(ctx)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, productoToResponse(&productos[i]))
	}
	if s.catalogo != nil {
		s.catalogo.SetActivos(ctx, data)
	}
	return data, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ProductoNoEncontradoError{ProductoID: id.String()}
		}
		return nil, err
	}

	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.CategoriaID != nil {
		categoriaID, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, fmt.Errorf("categoria_id inválido: %w", err)
		}
		if _, err := s.categoriaRepo.ObtenerPorID(ctx, categoriaID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &CategoriaNoEncontradaError{CategoriaID: *req.CategoriaID}
			}
			return nil, err
		}
		p.CategoriaID = categoriaID
	}
	if req.Proveedor != nil {
		p.Proveedor = req.Proveedor
	}
	if req.PrecioCompra != nil {
		p.PrecioCompra = *req.PrecioCompra
	}
	if req.PrecioPublico != nil {
		p.PrecioPublico = *req.PrecioPublico
	}
	if req.MinimoStock != nil {
		p.MinimoStock = *req.MinimoStock
	}
	if req.ImagenURL != nil {
		p.ImagenURL = req.ImagenURL
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidar(ctx)
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidar(ctx)
	return nil
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Reactivar(ctx, id); err != nil {
		return err
	}
	s.invalidar(ctx)
	return nil
}

func (s *productoService) EliminarDefinitivo(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.HardDelete(ctx, id); err != nil {
		return err
	}
	s.invalidar(ctx)
	return nil
}

// AjustarStock applies a manual delta (restock or correction). Read, floored
// write and ledger entry run in one transaction under the row lock, so two
// concurrent adjustments always chain their anterior/nuevo values. It never
// runs inside a sale transaction.
func (s *productoService) AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error) {
	var p *model.Producto
	var nuevo int

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		if tx == nil {
			p, err = s.repo.FindByID(ctx, id)
		} else {
			p, err = s.repo.FindByIDForUpdateTx(tx, id)
		}
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ProductoNoEncontradoError{ProductoID: id.String()}
			}
			return err
		}

		nuevo = p.Cantidad + req.Delta
		if nuevo < 0 {
			nuevo = 0
		}
		if err := s.repo.AjustarStockTx(tx, id, req.Delta); err != nil {
			return err
		}

		return s.movimientoRepo.CreateTx(tx, &model.MovimientoStock{
			ProductoID:    p.ID,
			Tipo:          "ajuste_manual",
			Cantidad:      nuevo - p.Cantidad,
			StockAnterior: p.Cantidad,
			StockNuevo:    nuevo,
			Motivo:        req.Motivo,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.bus != nil {
		s.bus.Publish(events.Evento{
			Tipo:   events.TipoStock,
			Stocks: []events.StockCambio{{ProductoID: p.ID.String(), Nombre: p.Nombre, Cantidad: nuevo}},
		})
	}
	s.invalidar(ctx)
	if s.dispatcher != nil && nuevo <= p.MinimoStock {
		_ = s.dispatcher.EnqueueAlertaStock(ctx, worker.AlertaStockPayload{
			ProductoID:  p.ID.String(),
			Nombre:      p.Nombre,
			Cantidad:    nuevo,
			MinimoStock: p.MinimoStock,
		})
	}

	p.Cantidad = nuevo
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) invalidar(ctx context.Context) {
	if s.catalogo != nil {
		s.catalogo.InvalidarActivos(ctx)
	}
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:            p.ID.String(),
		CodigoBarras:  p.CodigoBarras,
		Nombre:        p.Nombre,
		Descripcion:   p.Descripcion,
		CategoriaID:   p.CategoriaID.String(),
		Proveedor:     p.Proveedor,
		PrecioCompra:  p.PrecioCompra,
		PrecioPublico: p.PrecioPublico,
		Cantidad:      p.Cantidad,
		MinimoStock:   p.MinimoStock,
		ImagenURL:     p.ImagenURL,
		Activo:        p.Activo,
	}
}
