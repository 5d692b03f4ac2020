package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is an immutable record of a completed checkout.
// Once created it is never updated or deleted; corrections happen in
// inventory, not here.
type Venta struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IVA        decimal.Decimal `gorm:"type:decimal(12,2);not null;column:iva"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago string          `gorm:"type:varchar(20);not null;default:'efectivo'"`
	Cliente    *string
	// Vendedor is the authenticated seller's username, taken from the JWT
	// claims — never from the request body.
	Vendedor   string    `gorm:"index;not null"`
	FechaVenta time.Time `gorm:"index;not null"`
	Estado     string    `gorm:"type:varchar(20);not null;default:'completada'"`
	CreatedAt  time.Time

	Items []VentaItem `gorm:"foreignKey:VentaID"`
}

func (Venta) TableName() string { return "ventas" }

// VentaItem is one line of a sale. Nombre and PrecioUnitario are snapshots
// taken at sale time so the record stays readable after the product changes
// or is permanently deleted.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Nombre         string          `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Cantidad       int             `gorm:"not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (VentaItem) TableName() string { return "venta_items" }
