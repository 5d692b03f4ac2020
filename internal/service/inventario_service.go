package service

import (
	"context"
	"time"

	"comerciopos/internal/dto"
	"comerciopos/internal/repository"
)

type InventarioService interface {
	// ListarMovimientos returns the stock ledger, newest first.
	ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) ([]dto.MovimientoStockResponse, error)
	// ObtenerAlertas lists active products at or below their minimum.
	ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
}

type inventarioService struct {
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoStockRepository
}

func NewInventarioService(productoRepo repository.ProductoRepository, movimientoRepo repository.MovimientoStockRepository) InventarioService {
	return &inventarioService{productoRepo: productoRepo, movimientoRepo: movimientoRepo}
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) ([]dto.MovimientoStockResponse, error) {
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	movimientos, err := s.movimientoRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimientoStockResponse, 0, len(movimientos))
	for _, m := range movimientos {
		resp := dto.MovimientoStockResponse{
			ID:            m.ID.String(),
			ProductoID:    m.ProductoID.String(),
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
			CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		}
		if m.Producto != nil {
			resp.Producto = m.Producto.Nombre
		}
		if m.ReferenciaID != nil {
			ref := m.ReferenciaID.String()
			resp.ReferenciaID = &ref
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *inventarioService) ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productoRepo.ListBajoStock(ctx)
	if err != nil {
		return nil, err
	}
	alertas := make([]dto.AlertaStockResponse, 0, len(productos))
	for _, p := range productos {
		alertas = append(alertas, dto.AlertaStockResponse{
			ProductoID:  p.ID.String(),
			Nombre:      p.Nombre,
			Cantidad:    p.Cantidad,
			MinimoStock: p.MinimoStock,
		})
	}
	return alertas, nil
}
