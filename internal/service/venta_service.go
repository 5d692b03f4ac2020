package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"comerciopos/internal/dto"
	"comerciopos/internal/events"
	"comerciopos/internal/model"
	"comerciopos/internal/repository"
	"comerciopos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// maxIntentosVenta bounds the conflict-retry loop. Exceeding it surfaces
	// ErrConflictoTransitorio instead of blocking the caller.
	maxIntentosVenta = 3
	backoffConflicto = 25 * time.Millisecond
)

// tasaIVA is the flat 10% tax applied on the subtotal.
var tasaIVA = decimal.New(10, -2)

type VentaService interface {
	RegistrarVenta(ctx context.Context, vendedor string, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, filter dto.VentaFilter) ([]dto.VentaResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
}

type ventaService struct {
	repo           repository.VentaRepository
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoStockRepository
	bus            *events.Bus
	catalogo       CatalogoCache
	dispatcher     *worker.Dispatcher
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	movimientoRepo repository.MovimientoStockRepository,
	bus *events.Bus,
	catalogo CatalogoCache,
	dispatcher *worker.Dispatcher,
) VentaService {
	return &ventaService{
		repo:           repo,
		productoRepo:   productoRepo,
		movimientoRepo: movimientoRepo,
		bus:            bus,
		catalogo:       catalogo,
		dispatcher:     dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// lineaVenta is a coalesced line item: one entry per distinct product.
type lineaVenta struct {
	productoID uuid.UUID
	cantidad   int
}

// coalesceLineas validates the raw items and merges duplicate product ids by
// summing their quantities, preserving first-seen order. Selling 2 then 3
// units of the same product in one request equals selling 5.
func coalesceLineas(items []dto.ItemVentaRequest) ([]lineaVenta, error) {
	if len(items) == 0 {
		return nil, ErrVentaVacia
	}
	idx := make(map[uuid.UUID]int, len(items))
	lineas := make([]lineaVenta, 0, len(items))
	for _, item := range items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id inválido: %w", err)
		}
		if item.Cantidad <= 0 {
			return nil, fmt.Errorf("cantidad inválida para producto %s", item.ProductoID)
		}
		if i, ok := idx[pid]; ok {
			lineas[i].cantidad += item.Cantidad
			continue
		}
		idx[pid] = len(lineas)
		lineas = append(lineas, lineaVenta{productoID: pid, cantidad: item.Cantidad})
	}
	return lineas, nil
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// The atomic unit: validate stock for every line, decrement every product and
// create exactly one Venta — all inside one transaction. Either everything
// commits or nothing does. Unit prices always come from the stored
// precio_publico; whatever the client sent is ignored.
//
// A write conflict aborts and retries the whole unit from the first read,
// never reapplying partial work, up to maxIntentosVenta attempts.

func (s *ventaService) RegistrarVenta(ctx context.Context, vendedor string, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	lineas, err := coalesceLineas(req.Productos)
	if err != nil {
		return nil, err
	}
	if req.MetodoPago == "" {
		req.MetodoPago = "efectivo"
	}

	var venta *model.Venta
	var stocks []events.StockCambio
	var alertas []worker.AlertaStockPayload

	for intento := 1; ; intento++ {
		venta, stocks, alertas, err = s.registrarVentaIntento(ctx, vendedor, req, lineas)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrStockConflict) {
			return nil, err
		}
		if intento >= maxIntentosVenta {
			return nil, ErrConflictoTransitorio
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(intento) * backoffConflicto):
		}
	}

	// Post-commit effects are fire-and-forget: they never undo a committed
	// sale and they are not part of the atomic unit's success criteria.
	if s.bus != nil {
		s.bus.Publish(events.Evento{
			Tipo:    events.TipoVenta,
			VentaID: venta.ID.String(),
			Stocks:  stocks,
		})
	}
	if s.catalogo != nil {
		s.catalogo.InvalidarActivos(ctx)
	}
	if s.dispatcher != nil {
		for _, a := range alertas {
			_ = s.dispatcher.EnqueueAlertaStock(ctx, a)
		}
	}

	return ventaToResponse(venta), nil
}

// registrarVentaIntento runs one attempt of the atomic unit.
func (s *ventaService) registrarVentaIntento(
	ctx context.Context,
	vendedor string,
	req dto.RegistrarVentaRequest,
	lineas []lineaVenta,
) (*model.Venta, []events.StockCambio, []worker.AlertaStockPayload, error) {
	var venta model.Venta
	var stocks []events.StockCambio
	var alertas []worker.AlertaStockPayload

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		stocks = stocks[:0]
		alertas = alertas[:0]

		// Lock products in deterministic id order so two concurrent sales
		// over the same set of products cannot deadlock each other.
		orden := make([]lineaVenta, len(lineas))
		copy(orden, lineas)
		sort.Slice(orden, func(i, j int) bool {
			return bytes.Compare(orden[i].productoID[:], orden[j].productoID[:]) < 0
		})

		productos := make(map[uuid.UUID]*model.Producto, len(orden))
		for _, l := range orden {
			p, err := s.findForUpdate(ctx, tx, l.productoID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ProductoNoEncontradoError{ProductoID: l.productoID.String()}
				}
				return err
			}
			if !p.Activo {
				return &ProductoInactivoError{Nombre: p.Nombre}
			}
			productos[l.productoID] = p
		}

		// Pure validation pass: collect every deficit before touching a row.
		var faltantes []FaltanteStock
		for _, l := range lineas {
			p := productos[l.productoID]
			if p.Cantidad < l.cantidad {
				faltantes = append(faltantes, FaltanteStock{
					ProductoID: p.ID.String(),
					Nombre:     p.Nombre,
					Solicitado: l.cantidad,
					Disponible: p.Cantidad,
				})
			}
		}
		if len(faltantes) > 0 {
			return &StockInsuficienteError{Faltantes: faltantes}
		}

		// Build the venta from server-trusted prices.
		subtotal := decimal.Zero
		items := make([]model.VentaItem, 0, len(lineas))
		for _, l := range lineas {
			p := productos[l.productoID]
			lineSubtotal := p.PrecioPublico.Mul(decimal.NewFromInt(int64(l.cantidad)))
			subtotal = subtotal.Add(lineSubtotal)
			items = append(items, model.VentaItem{
				ProductoID:     p.ID,
				Nombre:         p.Nombre,
				PrecioUnitario: p.PrecioPublico,
				Cantidad:       l.cantidad,
				Subtotal:       lineSubtotal,
			})
		}
		iva := subtotal.Mul(tasaIVA).Round(2)

		venta = model.Venta{
			ID:         uuid.New(),
			Subtotal:   subtotal,
			IVA:        iva,
			Total:      subtotal.Add(iva),
			MetodoPago: req.MetodoPago,
			Cliente:    req.Cliente,
			Vendedor:   vendedor,
			FechaVenta: time.Now().UTC(),
			Estado:     "completada",
			Items:      items,
		}

		// Decrement before inserting the venta: a conflict aborts the attempt
		// with no sale row, and the tx rollback undoes any partial decrement.
		for _, l := range lineas {
			p := productos[l.productoID]
			if err := s.productoRepo.DescontarStockTx(tx, l.productoID, l.cantidad); err != nil {
				return fmt.Errorf("descontando stock de %s: %w", p.Nombre, err)
			}

			nuevo := p.Cantidad - l.cantidad
			ventaRef := venta.ID
			mov := &model.MovimientoStock{
				ProductoID:    p.ID,
				Tipo:          "venta",
				Cantidad:      -l.cantidad,
				StockAnterior: p.Cantidad,
				StockNuevo:    nuevo,
				Motivo:        fmt.Sprintf("Venta %s", venta.ID),
				ReferenciaID:  &ventaRef,
			}
			if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
				return err
			}

			stocks = append(stocks, events.StockCambio{
				ProductoID: p.ID.String(),
				Nombre:     p.Nombre,
				Cantidad:   nuevo,
			})
			if nuevo <= p.MinimoStock {
				alertas = append(alertas, worker.AlertaStockPayload{
					ProductoID:  p.ID.String(),
					Nombre:      p.Nombre,
					Cantidad:    nuevo,
					MinimoStock: p.MinimoStock,
				})
			}
		}

		return s.repo.CreateTx(ctx, tx, &venta)
	})
	if txErr != nil {
		return nil, nil, nil, txErr
	}
	return &venta, stocks, alertas, nil
}

// findForUpdate uses the row lock when running against a real DB and falls
// back to a plain read in unit-test mode (nil tx).
func (s *ventaService) findForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	if tx == nil {
		return s.productoRepo.FindByID(ctx, id)
	}
	return s.productoRepo.FindByIDForUpdateTx(tx, id)
}

// ── Read model ────────────────────────────────────────────────────────────────

// ListVentas returns sales newest-first, filters conjunctive.
func (s *ventaService) ListVentas(ctx context.Context, filter dto.VentaFilter) ([]dto.VentaResponse, error) {
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		result = append(result, *ventaToResponse(&ventas[i]))
	}
	return result, nil
}

// ObtenerPorID returns one sale with line items enriched by current product
// detail when the product still exists; the denormalized snapshot always
// stands in, so a deleted product never fails the read.
func (s *ventaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ventaToResponse(venta)
	for i, item := range venta.Items {
		if item.Producto != nil {
			pr := productoToResponse(item.Producto)
			resp.Items[i].Producto = &pr
		}
	}
	return resp, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, dto.ItemVentaResponse{
			ProductoID:     item.ProductoID.String(),
			Nombre:         item.Nombre,
			PrecioUnitario: item.PrecioUnitario,
			Cantidad:       item.Cantidad,
			Subtotal:       item.Subtotal,
		})
	}
	return &dto.VentaResponse{
		ID:         v.ID.String(),
		Items:      items,
		Subtotal:   v.Subtotal,
		IVA:        v.IVA,
		Total:      v.Total,
		MetodoPago: v.MetodoPago,
		Cliente:    v.Cliente,
		Vendedor:   v.Vendedor,
		FechaVenta: v.FechaVenta.Format(time.RFC3339),
		Estado:     v.Estado,
	}
}
