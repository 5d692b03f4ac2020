package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	CodigoBarras  string          `json:"codigo_barras"  validate:"required,min=8,max=18"`
	Nombre        string          `json:"nombre"         validate:"required,min=2,max=120"`
	Descripcion   *string         `json:"descripcion"`
	CategoriaID   string          `json:"categoria_id"   validate:"required,uuid"`
	Proveedor     *string         `json:"proveedor"`
	PrecioCompra  decimal.Decimal `json:"precio_compra"  validate:"min=0"`
	PrecioPublico decimal.Decimal `json:"precio_publico" validate:"required"`
	Cantidad      int             `json:"cantidad"       validate:"min=0"`
	MinimoStock   int             `json:"minimo_stock"   validate:"min=0"`
	ImagenURL     *string         `json:"imagen_url"     validate:"omitempty,url"`
}

type ActualizarProductoRequest struct {
	Nombre        *string          `json:"nombre"         validate:"omitempty,min=2,max=120"`
	Descripcion   *string          `json:"descripcion"`
	CategoriaID   *string          `json:"categoria_id"   validate:"omitempty,uuid"`
	Proveedor     *string          `json:"proveedor"`
	PrecioCompra  *decimal.Decimal `json:"precio_compra"`
	PrecioPublico *decimal.Decimal `json:"precio_publico"`
	MinimoStock   *int             `json:"minimo_stock"   validate:"omitempty,min=0"`
	ImagenURL     *string          `json:"imagen_url"     validate:"omitempty,url"`
}

// AjustarStockRequest adjusts stock by a delta (restock or correction).
// A direct inventory edit is a single-document write — it never participates
// in a sale transaction.
type AjustarStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Barcode     string `form:"barcode"`
	Nombre      string `form:"nombre"`
	CategoriaID string `form:"categoria_id"`
	Activo      string `form:"activo"` // "false" = inactivos, "all" = todos, default activos
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID            string          `json:"id"`
	CodigoBarras  string          `json:"codigo_barras"`
	Nombre        string          `json:"nombre"`
	Descripcion   *string         `json:"descripcion"`
	CategoriaID   string          `json:"categoria_id"`
	Proveedor     *string         `json:"proveedor"`
	PrecioCompra  decimal.Decimal `json:"precio_compra"`
	PrecioPublico decimal.Decimal `json:"precio_publico"`
	Cantidad      int             `json:"cantidad"`
	MinimoStock   int             `json:"minimo_stock"`
	ImagenURL     *string         `json:"imagen_url"`
	Activo        bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
