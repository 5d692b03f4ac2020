package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"comerciopos/internal/dto"
	"comerciopos/internal/repository"

	"github.com/shopspring/decimal"
)

type ReporteService interface {
	// Dashboard aggregates completed sales over a date range. An empty range
	// defaults to today.
	Dashboard(ctx context.Context, filter dto.ReporteFilter) (*dto.DashboardResponse, error)
}

type reporteService struct {
	ventaRepo    repository.VentaRepository
	productoRepo repository.ProductoRepository
}

func NewReporteService(ventaRepo repository.VentaRepository, productoRepo repository.ProductoRepository) ReporteService {
	return &reporteService{ventaRepo: ventaRepo, productoRepo: productoRepo}
}

func (s *reporteService) Dashboard(ctx context.Context, filter dto.ReporteFilter) (*dto.DashboardResponse, error) {
	desde, hasta, err := rangoFechas(filter)
	if err != nil {
		return nil, err
	}
	if filter.Top < 1 {
		filter.Top = 5
	}

	ventas, err := s.ventaRepo.ListBetween(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	porMetodo := make(map[string]*dto.TotalPorMetodo)
	type acumulado struct {
		nombre   string
		unidades int
		importe  decimal.Decimal
	}
	porProducto := make(map[string]*acumulado)

	for i := range ventas {
		v := &ventas[i]
		total = total.Add(v.Total)

		m, ok := porMetodo[v.MetodoPago]
		if !ok {
			m = &dto.TotalPorMetodo{MetodoPago: v.MetodoPago, Total: decimal.Zero}
			porMetodo[v.MetodoPago] = m
		}
		m.Total = m.Total.Add(v.Total)
		m.Cantidad++

		for _, item := range v.Items {
			pid := item.ProductoID.String()
			p, ok := porProducto[pid]
			if !ok {
				p = &acumulado{nombre: item.Nombre, importe: decimal.Zero}
				porProducto[pid] = p
			}
			p.unidades += item.Cantidad
			p.importe = p.importe.Add(item.Subtotal)
		}
	}

	metodos := make([]dto.TotalPorMetodo, 0, len(porMetodo))
	for _, m := range porMetodo {
		metodos = append(metodos, *m)
	}
	sort.Slice(metodos, func(i, j int) bool { return metodos[i].Total.GreaterThan(metodos[j].Total) })

	top := make([]dto.ProductoTop, 0, len(porProducto))
	for pid, p := range porProducto {
		top = append(top, dto.ProductoTop{ProductoID: pid, Nombre: p.nombre, Unidades: p.unidades, Importe: p.importe})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Unidades != top[j].Unidades {
			return top[i].Unidades > top[j].Unidades
		}
		return top[i].Importe.GreaterThan(top[j].Importe)
	})
	if len(top) > filter.Top {
		top = top[:filter.Top]
	}

	ticketPromedio := decimal.Zero
	if len(ventas) > 0 {
		ticketPromedio = total.Div(decimal.NewFromInt(int64(len(ventas)))).Round(2)
	}

	bajoStock, err := s.productoRepo.ListBajoStock(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		TotalVendido:   total,
		CantidadVentas: len(ventas),
		TicketPromedio: ticketPromedio,
		PorMetodoPago:  metodos,
		ProductosTop:   top,
		AlertasStock:   len(bajoStock),
		FechaInicio:    desde.Format("2006-01-02"),
		FechaFin:       hasta.AddDate(0, 0, -1).Format("2006-01-02"),
	}, nil
}

// rangoFechas resolves the filter into a half-open [desde, hasta) range.
func rangoFechas(filter dto.ReporteFilter) (time.Time, time.Time, error) {
	hoy := time.Now().UTC().Truncate(24 * time.Hour)

	desde := hoy
	if filter.FechaInicio != "" {
		var err error
		desde, err = time.Parse("2006-01-02", filter.FechaInicio)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("fecha_inicio inválida: %w", err)
		}
	}

	hasta := desde.AddDate(0, 0, 1)
	if filter.FechaFin != "" {
		fin, err := time.Parse("2006-01-02", filter.FechaFin)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("fecha_fin inválida: %w", err)
		}
		hasta = fin.AddDate(0, 0, 1) // inclusive end of day
	}
	if !hasta.After(desde) {
		return time.Time{}, time.Time{}, fmt.Errorf("rango de fechas inválido")
	}
	return desde, hasta, nil
}
