package handler

import (
	"net/http"

	"comerciopos/internal/apierror"
	"comerciopos/internal/dto"
	"comerciopos/internal/middleware"
	"comerciopos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// RegistrarVenta godoc
// @Summary      Registrar una nueva venta
// @Description  Crea una venta atómica: valida stock, descuenta inventario y persiste la venta en una sola transacción. Los precios siempre salen del catálogo, nunca del cliente.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarVentaRequest true "Detalle de la venta"
// @Success      201  {object} dto.VentaResponse
// @Failure      404  {object} apierror.APIError "Producto inexistente"
// @Failure      409  {object} apierror.StockError "Stock insuficiente"
// @Failure      503  {object} apierror.APIError "Conflicto transitorio, reintentar"
// @Router       /v1/ventas [post]
func (h *VentasHandler) RegistrarVenta(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.RegistrarVenta(c.Request.Context(), claims.Username, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, resp)
}

// ListarVentas godoc
// @Summary      Listar ventas
// @Description  Retorna ventas ordenadas de más reciente a más antigua, con filtros conjuntivos por rango de fechas, vendedor y método de pago.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        fecha_inicio query string false "YYYY-MM-DD inclusive"
// @Param        fecha_fin    query string false "YYYY-MM-DD inclusive"
// @Param        vendedor     query string false "Username del vendedor"
// @Param        metodo_pago  query string false "efectivo | debito | credito | transferencia"
// @Param        limit        query int    false "Registros (default 50, max 200)"
// @Success      200 {array} dto.VentaResponse
// @Router       /v1/ventas [get]
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	var filter dto.VentaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("filtros invalidos"))
		return
	}
	resp, err := h.svc.ListVentas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// ObtenerVenta godoc
// @Summary      Detalle de una venta
// @Description  Retorna la venta con sus líneas enriquecidas con el detalle actual del producto cuando sigue existiendo.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la venta"
// @Success      200 {object} dto.VentaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/ventas/{id} [get]
func (h *VentasHandler) ObtenerVenta(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}
