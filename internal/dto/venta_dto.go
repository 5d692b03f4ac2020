package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemVentaRequest is one line of a checkout. PrecioUnitario is accepted for
// backwards compatibility with older clients but is NEVER trusted: the engine
// re-derives prices from the stored precio_publico.
type ItemVentaRequest struct {
	ProductoID     string           `json:"producto_id" validate:"required,uuid"`
	Cantidad       int              `json:"cantidad"    validate:"required,min=1"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
}

type RegistrarVentaRequest struct {
	Productos  []ItemVentaRequest `json:"productos"   validate:"required,min=1,dive"`
	MetodoPago string             `json:"metodo_pago" validate:"omitempty,oneof=efectivo debito credito transferencia"`
	Cliente    *string            `json:"cliente"     validate:"omitempty,max=120"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from the query string of GET /v1/ventas.
// Filters are conjunctive; results come back newest-first.
type VentaFilter struct {
	FechaInicio string `form:"fecha_inicio"` // YYYY-MM-DD inclusive
	FechaFin    string `form:"fecha_fin"`    // YYYY-MM-DD inclusive
	Vendedor    string `form:"vendedor"`
	MetodoPago  string `form:"metodo_pago"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Nombre         string          `json:"nombre"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Cantidad       int             `json:"cantidad"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	// Producto carries current product detail on enriched reads
	// (GET /v1/ventas/:id). Nil when the product no longer exists — the
	// snapshot fields above stand in.
	Producto *ProductoResponse `json:"producto,omitempty"`
}

type VentaResponse struct {
	ID         string              `json:"id"`
	Items      []ItemVentaResponse `json:"productos"`
	Subtotal   decimal.Decimal     `json:"subtotal"`
	IVA        decimal.Decimal     `json:"iva"`
	Total      decimal.Decimal     `json:"total"`
	MetodoPago string              `json:"metodo_pago"`
	Cliente    *string             `json:"cliente,omitempty"`
	Vendedor   string              `json:"vendedor"`
	FechaVenta string              `json:"fecha_venta"`
	Estado     string              `json:"estado"`
}
