package model

import (
	"time"

	"github.com/google/uuid"
)

// Sucursal is a branch/location. Lat/Lng come straight from the map picker;
// the backend stores them verbatim and never geocodes.
type Sucursal struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NombreSucursal string    `gorm:"not null"`
	Lat            float64   `gorm:"not null"`
	Lng            float64   `gorm:"not null"`
	Direccion      *string
	Ciudad         *string
	CodigoPostal   *string
	Telefono       *string
	Activo         bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Sucursal) TableName() string { return "sucursales" }
