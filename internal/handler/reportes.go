package handler

import (
	"net/http"

	"comerciopos/internal/apierror"
	"comerciopos/internal/dto"
	"comerciopos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// Dashboard godoc
// @Summary      Dashboard de ventas
// @Description  Totales, desglose por método de pago, productos más vendidos y conteo de alertas de stock para el rango dado (default: hoy).
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        fecha_inicio query string false "YYYY-MM-DD"
// @Param        fecha_fin    query string false "YYYY-MM-DD"
// @Param        top          query int    false "Cantidad de productos top (default 5)"
// @Success      200 {object} dto.DashboardResponse
// @Router       /v1/reportes/dashboard [get]
func (h *ReportesHandler) Dashboard(c *gin.Context) {
	var filter dto.ReporteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Dashboard(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	respond(c, http.StatusOK, resp)
}
