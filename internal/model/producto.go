package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is an inventory item. Cantidad is the invariant-critical field:
// it never goes negative, and outside of direct inventory adjustments it is
// mutated exclusively inside a sale transaction.
type Producto struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CodigoBarras  string    `gorm:"uniqueIndex;not null"`
	Nombre        string    `gorm:"index;not null"`
	Descripcion   *string
	CategoriaID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Proveedor     *string
	PrecioCompra  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecioPublico decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Cantidad      int             `gorm:"not null;default:0"`
	MinimoStock   int             `gorm:"not null;default:5"`
	ImagenURL     *string         `gorm:"column:imagen_url"`
	Activo        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
}
