package handler

import (
	"net/http"

	"comerciopos/internal/dto"
	"comerciopos/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary      Iniciar sesión (paso 1 de 2)
// @Description  Verifica credenciales y abre un desafío MFA. Nunca entrega tokens de acceso directamente: el estado devuelto indica si falta enrolar MFA o solo verificar el código TOTP.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.LoginRequest true "Credenciales"
// @Success      200 {object} dto.LoginResponse
// @Failure      401 {object} apierror.APIError
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// ConfigurarMFA issues the TOTP secret and otpauth URL for enrollment.
func (h *AuthHandler) ConfigurarMFA(c *gin.Context) {
	var body struct {
		MfaToken string `json:"mfa_token" validate:"required"`
	}
	if !bindAndValidate(c, &body) {
		return
	}
	resp, err := h.svc.ConfigurarMFA(c.Request.Context(), body.MfaToken)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// VerificarOTP godoc
// @Summary      Verificar código TOTP (paso 2 de 2)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.VerificarOTPRequest true "Desafío MFA y código"
// @Success      200 {object} dto.LoginResponse
// @Failure      401 {object} apierror.APIError
// @Router       /v1/auth/verificar-otp [post]
func (h *AuthHandler) VerificarOTP(c *gin.Context) {
	var req dto.VerificarOTPRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.VerificarOTP(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}
