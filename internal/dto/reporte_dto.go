package dto

import "github.com/shopspring/decimal"

// ReporteFilter bounds dashboard aggregates to a date range.
// Empty range defaults to the current day.
type ReporteFilter struct {
	FechaInicio string `form:"fecha_inicio"`
	FechaFin    string `form:"fecha_fin"`
	Top         int    `form:"top,default=5" validate:"min=1,max=50"`
}

type TotalPorMetodo struct {
	MetodoPago string          `json:"metodo_pago"`
	Total      decimal.Decimal `json:"total"`
	Cantidad   int             `json:"cantidad"`
}

type ProductoTop struct {
	ProductoID string          `json:"producto_id"`
	Nombre     string          `json:"nombre"`
	Unidades   int             `json:"unidades"`
	Importe    decimal.Decimal `json:"importe"`
}

type DashboardResponse struct {
	TotalVendido    decimal.Decimal  `json:"total_vendido"`
	CantidadVentas  int              `json:"cantidad_ventas"`
	TicketPromedio  decimal.Decimal  `json:"ticket_promedio"`
	PorMetodoPago   []TotalPorMetodo `json:"por_metodo_pago"`
	ProductosTop    []ProductoTop    `json:"productos_top"`
	AlertasStock    int              `json:"alertas_stock"`
	FechaInicio     string           `json:"fecha_inicio"`
	FechaFin        string           `json:"fecha_fin"`
}
