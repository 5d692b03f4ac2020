package service

import (
	"context"
	"errors"
	"time"

	"comerciopos/internal/config"
	"comerciopos/internal/dto"
	"comerciopos/internal/middleware"
	"comerciopos/internal/model"
	"comerciopos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrCredencialesInvalidas = errors.New("credenciales invalidas")
	ErrTokenInvalido         = errors.New("token invalido o expirado")
	ErrCodigoOTPInvalido     = errors.New("codigo OTP invalido")
	ErrMFANoConfigurado      = errors.New("MFA no configurado para este usuario")
)

type AuthService interface {
	// Login verifies credentials and opens an MFA challenge. It never returns
	// access tokens directly.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// ConfigurarMFA issues a fresh TOTP secret for a user holding a valid
	// challenge token in awaiting_mfa_enrollment.
	ConfigurarMFA(ctx context.Context, mfaToken string) (*dto.ConfigurarMFAResponse, error)
	// VerificarOTP completes the challenge and mints access + refresh tokens.
	VerificarOTP(ctx context.Context, req dto.VerificarOTPRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)

	CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context, incluirInactivos bool) ([]dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	DesactivarUsuario(ctx context.Context, id uuid.UUID) error
	ReactivarUsuario(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrCredencialesInvalidas
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredencialesInvalidas
	}

	estado := EstadoEsperandoOTP
	if !user.MfaEnabled {
		estado = EstadoEnrolamiento
	}

	mfaToken, err := s.generateToken(user, "mfa", time.Duration(s.cfg.MFAChallengeMinutes)*time.Minute)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Estado:   string(estado),
		MfaToken: mfaToken,
		User:     usuarioToResponse(user),
	}, nil
}

func (s *authService) ConfigurarMFA(ctx context.Context, mfaToken string) (*dto.ConfigurarMFAResponse, error) {
	user, err := s.userFromToken(ctx, mfaToken, "mfa")
	if err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.cfg.MFAIssuer,
		AccountName: user.Username,
	})
	if err != nil {
		return nil, err
	}

	// The secret is stored now but MfaEnabled stays false until the first
	// successful verification, so a half-finished enrollment never locks the
	// user out.
	secret := key.Secret()
	user.MfaSecret = &secret
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return &dto.ConfigurarMFAResponse{Secret: key.Secret(), OtpauthURL: key.URL()}, nil
}

func (s *authService) VerificarOTP(ctx context.Context, req dto.VerificarOTPRequest) (*dto.LoginResponse, error) {
	user, err := s.userFromToken(ctx, req.MfaToken, "mfa")
	if err != nil {
		return nil, err
	}
	if user.MfaSecret == nil || *user.MfaSecret == "" {
		return nil, ErrMFANoConfigurado
	}
	if !totp.Validate(req.Codigo, *user.MfaSecret) {
		return nil, ErrCodigoOTPInvalido
	}

	if !user.MfaEnabled {
		user.MfaEnabled = true
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return s.issueTokens(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	user, err := s.userFromToken(ctx, refreshToken, "refresh")
	if err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

func (s *authService) issueTokens(user *model.Usuario) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, "access", time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, "refresh", time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Estado:       string(EstadoAutenticado),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         usuarioToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, use string, ttl time.Duration) (string, error) {
	claims := middleware.JWTClaims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Rol:      user.Rol,
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// userFromToken validates a token of the expected use and loads its user.
func (s *authService) userFromToken(ctx context.Context, tokenStr, expectedUse string) (*model.Usuario, error) {
	claims := &middleware.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid || claims.TokenUse != expectedUse {
		return nil, ErrTokenInvalido
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrTokenInvalido
	}
	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		return nil, ErrTokenInvalido
	}
	return user, nil
}

// ── Usuario CRUD ──────────────────────────────────────────────────────────────

func (s *authService) CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		Username:     req.Username,
		Nombre:       req.Nombre,
		Gmail:        req.Gmail,
		PasswordHash: string(hash),
		Rol:          req.Rol,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context, incluirInactivos bool) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.List(ctx, incluirInactivos)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UsuarioResponse, 0, len(users))
	for i := range users {
		out = append(out, usuarioToResponse(&users[i]))
	}
	return out, nil
}

func (s *authService) ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != "" {
		user.Nombre = req.Nombre
	}
	if req.Gmail != nil {
		user.Gmail = req.Gmail
	}
	if req.Rol != "" {
		user.Rol = req.Rol
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) DesactivarUsuario(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *authService) ReactivarUsuario(ctx context.Context, id uuid.UUID) error {
	return s.repo.Reactivar(ctx, id)
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Nombre:     u.Nombre,
		Gmail:      u.Gmail,
		Rol:        u.Rol,
		MfaEnabled: u.MfaEnabled,
		Activo:     u.Activo,
	}
}
