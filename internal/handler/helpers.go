package handler

import (
	"errors"
	"net/http"
	"reflect"

	"comerciopos/internal/apierror"
	"comerciopos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respond writes the success envelope every 2xx response uses.
func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondError maps service-layer errors onto HTTP statuses. Unknown errors
// become a generic 500 so internals never leak.
func respondError(c *gin.Context, err error) {
	var noEncontrado *service.ProductoNoEncontradoError
	var catNoEncontrada *service.CategoriaNoEncontradaError
	var inactivo *service.ProductoInactivoError
	var sinStock *service.StockInsuficienteError

	switch {
	case errors.As(err, &noEncontrado), errors.As(err, &catNoEncontrada),
		errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.As(err, &sinStock):
		c.JSON(http.StatusConflict, apierror.NewStock(sinStock.Error(), sinStock.Faltantes))
	case errors.As(err, &inactivo),
		errors.Is(err, service.ErrCodigoBarrasDuplicado),
		errors.Is(err, service.ErrCategoriaDuplicada):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrConflictoTransitorio):
		c.JSON(http.StatusServiceUnavailable, apierror.New(err.Error()))
	case errors.Is(err, service.ErrVentaVacia):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, service.ErrCredencialesInvalidas),
		errors.Is(err, service.ErrTokenInvalido),
		errors.Is(err, service.ErrCodigoOTPInvalido):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, service.ErrMFANoConfigurado):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}
