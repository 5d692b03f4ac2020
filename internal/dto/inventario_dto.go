package dto

// MovimientoStockResponse is one entry of the stock ledger.
type MovimientoStockResponse struct {
	ID            string  `json:"id"`
	ProductoID    string  `json:"producto_id"`
	Producto      string  `json:"producto"`
	Tipo          string  `json:"tipo"`
	Cantidad      int     `json:"cantidad"`
	StockAnterior int     `json:"stock_anterior"`
	StockNuevo    int     `json:"stock_nuevo"`
	Motivo        string  `json:"motivo"`
	ReferenciaID  *string `json:"referencia_id"`
	CreatedAt     string  `json:"created_at"`
}

type MovimientoFilter struct {
	ProductoID string `form:"producto_id"`
	Tipo       string `form:"tipo"`
	Limit      int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// AlertaStockResponse flags a product at or below its minimum.
type AlertaStockResponse struct {
	ProductoID  string `json:"producto_id"`
	Nombre      string `json:"nombre"`
	Cantidad    int    `json:"cantidad"`
	MinimoStock int    `json:"minimo_stock"`
}
