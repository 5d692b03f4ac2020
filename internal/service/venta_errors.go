package service

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy of the sale transaction engine. Every failure aborts the
// whole atomic unit with zero side effects; the kind decides the HTTP status
// and whether the caller may retry.
var (
	// ErrVentaVacia: the request carried no line items.
	ErrVentaVacia = errors.New("la venta debe incluir al menos un producto")

	// ErrConflictoTransitorio: the bounded conflict-retry was exhausted.
	// The caller may retry the whole request.
	ErrConflictoTransitorio = errors.New("conflicto de concurrencia: reintente la venta")
)

// ProductoNoEncontradoError identifies the missing product id.
type ProductoNoEncontradoError struct {
	ProductoID string
}

func (e *ProductoNoEncontradoError) Error() string {
	return fmt.Sprintf("producto %s no encontrado", e.ProductoID)
}

// ProductoInactivoError: the product exists but is soft-deleted.
type ProductoInactivoError struct {
	Nombre string
}

func (e *ProductoInactivoError) Error() string {
	return fmt.Sprintf("producto %q está inactivo y no puede venderse", e.Nombre)
}

// FaltanteStock names one offending product and what is actually available.
type FaltanteStock struct {
	ProductoID string `json:"producto_id"`
	Nombre     string `json:"nombre"`
	Solicitado int    `json:"solicitado"`
	Disponible int    `json:"disponible"`
}

// StockInsuficienteError lists every product whose stock cannot cover the
// request. Validation is all-or-nothing: no partial commit happened.
type StockInsuficienteError struct {
	Faltantes []FaltanteStock
}

func (e *StockInsuficienteError) Error() string {
	parts := make([]string, 0, len(e.Faltantes))
	for _, f := range e.Faltantes {
		parts = append(parts, fmt.Sprintf("%s (solicitado %d, disponible %d)", f.Nombre, f.Solicitado, f.Disponible))
	}
	return "stock insuficiente: " + strings.Join(parts, "; ")
}
