package tests

import (
	"context"
	"testing"
	"time"

	"comerciopos/internal/dto"
	"comerciopos/internal/model"
	"comerciopos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedVenta(t *testing.T, repo *stubVentaRepo, fecha time.Time, metodo string, items ...model.VentaItem) {
	t.Helper()
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Subtotal)
	}
	iva := subtotal.Mul(decimal.New(10, -2)).Round(2)
	require.NoError(t, repo.CreateTx(context.Background(), nil, &model.Venta{
		Subtotal:   subtotal,
		IVA:        iva,
		Total:      subtotal.Add(iva),
		MetodoPago: metodo,
		Vendedor:   "ana",
		FechaVenta: fecha,
		Estado:     "completada",
		Items:      items,
	}))
}

func item(productoID uuid.UUID, nombre string, precio float64, cantidad int) model.VentaItem {
	p := decimal.NewFromFloat(precio)
	return model.VentaItem{
		ProductoID:     productoID,
		Nombre:         nombre,
		PrecioUnitario: p,
		Cantidad:       cantidad,
		Subtotal:       p.Mul(decimal.NewFromInt(int64(cantidad))),
	}
}

func TestDashboard_Agregados(t *testing.T) {
	ventaRepo := newStubVentaRepo()
	productoRepo := newStubProductoRepo()
	svc := service.NewReporteService(ventaRepo, productoRepo)

	coca := uuid.New()
	pan := uuid.New()
	hoy := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	// 3 ventas hoy: dos en efectivo, una con tarjeta.
	seedVenta(t, ventaRepo, hoy, "efectivo", item(coca, "Coca-Cola", 30, 2))          // 60 + 6
	seedVenta(t, ventaRepo, hoy.Add(time.Hour), "efectivo", item(pan, "Pan", 40, 1)) // 40 + 4
	seedVenta(t, ventaRepo, hoy.Add(2*time.Hour), "debito", item(coca, "Coca-Cola", 30, 3),
		item(pan, "Pan", 40, 2)) // 170 + 17

	// Fuera de rango: no debe contar.
	seedVenta(t, ventaRepo, hoy.AddDate(0, 0, -3), "efectivo", item(coca, "Coca-Cola", 30, 10))

	dash, err := svc.Dashboard(context.Background(), dto.ReporteFilter{
		FechaInicio: "2026-08-28",
		FechaFin:    "2026-08-28",
		Top:         5,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, dash.CantidadVentas)
	assert.True(t, dash.TotalVendido.Equal(decimal.NewFromFloat(297.0)), "total %s", dash.TotalVendido)
	assert.True(t, dash.TicketPromedio.Equal(decimal.NewFromFloat(99.0)), "promedio %s", dash.TicketPromedio)

	require.Len(t, dash.PorMetodoPago, 2)
	assert.Equal(t, "debito", dash.PorMetodoPago[0].MetodoPago) // mayor importe primero
	assert.Equal(t, 2, dash.PorMetodoPago[1].Cantidad)

	// Coca: 5 unidades; Pan: 3 unidades.
	require.Len(t, dash.ProductosTop, 2)
	assert.Equal(t, "Coca-Cola", dash.ProductosTop[0].Nombre)
	assert.Equal(t, 5, dash.ProductosTop[0].Unidades)
}

func TestDashboard_RangoVacio(t *testing.T) {
	svc := service.NewReporteService(newStubVentaRepo(), newStubProductoRepo())

	dash, err := svc.Dashboard(context.Background(), dto.ReporteFilter{
		FechaInicio: "2026-01-01",
		FechaFin:    "2026-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, dash.CantidadVentas)
	assert.True(t, dash.TotalVendido.IsZero())
	assert.True(t, dash.TicketPromedio.IsZero())
}

func TestDashboard_FechasInvalidas(t *testing.T) {
	svc := service.NewReporteService(newStubVentaRepo(), newStubProductoRepo())

	_, err := svc.Dashboard(context.Background(), dto.ReporteFilter{FechaInicio: "28/08/2026"})
	assert.Error(t, err)

	_, err = svc.Dashboard(context.Background(), dto.ReporteFilter{
		FechaInicio: "2026-08-28",
		FechaFin:    "2026-08-01",
	})
	assert.Error(t, err)
}
