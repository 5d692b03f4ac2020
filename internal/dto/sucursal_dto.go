package dto

// PositionDTO mirrors the map picker payload {lat, lng}.
type PositionDTO struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

type CrearSucursalRequest struct {
	NombreSucursal string      `json:"nombre_sucursal" validate:"required,min=2,max=120"`
	Position       PositionDTO `json:"position"        validate:"required"`
	Direccion      *string     `json:"direccion"`
	Ciudad         *string     `json:"ciudad"`
	CodigoPostal   *string     `json:"codigo_postal"`
	Telefono       *string     `json:"telefono"`
}

type ActualizarSucursalRequest struct {
	NombreSucursal *string      `json:"nombre_sucursal" validate:"omitempty,min=2,max=120"`
	Position       *PositionDTO `json:"position"`
	Direccion      *string      `json:"direccion"`
	Ciudad         *string      `json:"ciudad"`
	CodigoPostal   *string      `json:"codigo_postal"`
	Telefono       *string      `json:"telefono"`
	Activo         *bool        `json:"activo"`
}

type SucursalResponse struct {
	ID             string      `json:"id"`
	NombreSucursal string      `json:"nombre_sucursal"`
	Position       PositionDTO `json:"position"`
	Direccion      *string     `json:"direccion"`
	Ciudad         *string     `json:"ciudad"`
	CodigoPostal   *string     `json:"codigo_postal"`
	Telefono       *string     `json:"telefono"`
	Activo         bool        `json:"activo"`
}
