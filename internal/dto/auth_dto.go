package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// VerificarOTPRequest completes an MFA login. MfaToken is the short-lived
// challenge token issued by Login, not an access token.
type VerificarOTPRequest struct {
	MfaToken string `json:"mfa_token" validate:"required"`
	Codigo   string `json:"codigo"    validate:"required,len=6,numeric"`
}

type CrearUsuarioRequest struct {
	Username string  `json:"username" validate:"required,min=1,max=150"`
	Nombre   string  `json:"nombre"   validate:"required,min=2,max=100"`
	Gmail    *string `json:"gmail"    validate:"omitempty,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Rol      string  `json:"rol"      validate:"required,oneof=vendedor supervisor administrador"`
}

type ActualizarUsuarioRequest struct {
	Nombre   string  `json:"nombre"   validate:"omitempty,min=2,max=100"`
	Gmail    *string `json:"gmail"    validate:"omitempty,email"`
	Rol      string  `json:"rol"      validate:"omitempty,oneof=vendedor supervisor administrador"`
	Password string  `json:"password" validate:"omitempty,min=8"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Nombre     string  `json:"nombre"`
	Gmail      *string `json:"gmail"`
	Rol        string  `json:"rol"`
	MfaEnabled bool    `json:"mfa_enabled"`
	Activo     bool    `json:"activo"`
}

// LoginResponse is returned by Login, VerificarOTP and Refresh.
// When Estado is "awaiting_otp" or "awaiting_mfa_enrollment" only MfaToken is
// populated; tokens come after TOTP verification.
type LoginResponse struct {
	Estado       string          `json:"estado"`
	AccessToken  string          `json:"access_token,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	TokenType    string          `json:"token_type,omitempty"`
	ExpiresIn    int             `json:"expires_in,omitempty"` // seconds
	MfaToken     string          `json:"mfa_token,omitempty"`
	User         UsuarioResponse `json:"user"`
}

// ConfigurarMFAResponse carries the provisioning data for an authenticator app.
type ConfigurarMFAResponse struct {
	Secret     string `json:"secret"`
	OtpauthURL string `json:"otpauth_url"`
}
