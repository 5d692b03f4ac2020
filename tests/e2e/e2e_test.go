//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"comerciopos/internal/config"
	"comerciopos/internal/events"
	"comerciopos/internal/infra"
	"comerciopos/internal/model"
	"comerciopos/internal/router"

	"github.com/pquerna/otp/totp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// envelope mirrors the {success, data} wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Detail  string          `json:"detail"`
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("comerciopos_test"),
		tcPostgres.WithUsername("comerciopos"),
		tcPostgres.WithPassword("comerciopos"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:                8000,
		Env:                 "test",
		JWTSecret:           "test-secret-key",
		JWTExpirationHours:  8,
		JWTRefreshHours:     24,
		MFAChallengeMinutes: 5,
		MFAIssuer:           "ComercioPOS",
		CatalogoTTLSeconds:  30,
		DatabaseURL:         pgURL,
		RedisURL:            rdURL,
		WorkerPoolSize:      1,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	bus := events.NewBus()
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	engine := router.New(cfg, db, rdb, bus, smtpCB)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	env := &testEnv{server: srv, db: db}
	env.token = seedAdminAndLogin(t, env)
	return env
}

// seedAdminAndLogin creates a pre-enrolled admin and walks the MFA login.
func seedAdminAndLogin(t *testing.T, env *testEnv) string {
	t.Helper()

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "ComercioPOS", AccountName: "admin"})
	require.NoError(t, err)
	secret := key.Secret()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin1234"), 10)
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&model.Usuario{
		Username:     "admin",
		Nombre:       "Admin",
		PasswordHash: string(hash),
		Rol:          "administrador",
		MfaSecret:    &secret,
		MfaEnabled:   true,
		Activo:       true,
	}).Error)

	resp := do(t, env.server, http.MethodPost, "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "admin1234"}), "")
	var loginEnv envelope
	decodeJSON(t, resp, &loginEnv)
	require.True(t, loginEnv.Success)

	var login struct {
		Estado   string `json:"estado"`
		MfaToken string `json:"mfa_token"`
	}
	require.NoError(t, json.Unmarshal(loginEnv.Data, &login))
	require.Equal(t, "awaiting_otp", login.Estado)

	codigo, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	resp = do(t, env.server, http.MethodPost, "/v1/auth/verificar-otp",
		jsonBody(t, map[string]string{"mfa_token": login.MfaToken, "codigo": codigo}), "")
	var otpEnv envelope
	decodeJSON(t, resp, &otpEnv)
	require.True(t, otpEnv.Success)

	var final struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(otpEnv.Data, &final))
	require.NotEmpty(t, final.AccessToken)
	return final.AccessToken
}

func (env *testEnv) crearProducto(t *testing.T, nombre, barcode string, precio float64, cantidad int) string {
	t.Helper()

	var cat model.Categoria
	err := env.db.Where("nombre = ?", "General").First(&cat).Error
	if err != nil {
		cat = model.Categoria{Nombre: "General", Activo: true}
		require.NoError(t, env.db.Create(&cat).Error)
	}

	resp := do(t, env.server, http.MethodPost, "/v1/productos", jsonBody(t, map[string]any{
		"codigo_barras":  barcode,
		"nombre":         nombre,
		"categoria_id":   cat.ID.String(),
		"precio_compra":  precio / 2,
		"precio_publico": precio,
		"cantidad":       cantidad,
		"minimo_stock":   2,
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var env2 envelope
	decodeJSON(t, resp, &env2)
	var prod struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env2.Data, &prod))
	return prod.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_CicloCompletoDeVenta(t *testing.T) {
	env := setupTestEnv(t)
	productoID := env.crearProducto(t, "Coca-Cola 600ml", "7501000000101", 30.0, 10)

	resp := do(t, env.server, http.MethodPost, "/v1/ventas", jsonBody(t, map[string]any{
		"productos":   []map[string]any{{"producto_id": productoID, "cantidad": 3}},
		"metodo_pago": "efectivo",
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var ventaEnv envelope
	decodeJSON(t, resp, &ventaEnv)
	var venta struct {
		ID       string `json:"id"`
		Subtotal string `json:"subtotal"`
		Total    string `json:"total"`
		Vendedor string `json:"vendedor"`
	}
	require.NoError(t, json.Unmarshal(ventaEnv.Data, &venta))
	assert.Equal(t, "admin", venta.Vendedor)

	sub, _ := decimal.NewFromString(venta.Subtotal)
	tot, _ := decimal.NewFromString(venta.Total)
	assert.True(t, sub.Equal(decimal.NewFromFloat(90.0)))
	assert.True(t, tot.Equal(decimal.NewFromFloat(99.0)), "total con IVA 10%%: %s", venta.Total)

	// Stock decremented in the store.
	var p model.Producto
	require.NoError(t, env.db.First(&p, "id = ?", productoID).Error)
	assert.Equal(t, 7, p.Cantidad)

	// Ledger entry written.
	var movs int64
	require.NoError(t, env.db.Model(&model.MovimientoStock{}).
		Where("producto_id = ? AND tipo = ?", productoID, "venta").Count(&movs).Error)
	assert.EqualValues(t, 1, movs)

	// Detail read returns the venta.
	resp = do(t, env.server, http.MethodGet, "/v1/ventas/"+venta.ID, nil, env.token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_StockInsuficienteDevuelve409(t *testing.T) {
	env := setupTestEnv(t)
	productoID := env.crearProducto(t, "Pan blanco", "7501000000102", 40.0, 2)

	resp := do(t, env.server, http.MethodPost, "/v1/ventas", jsonBody(t, map[string]any{
		"productos": []map[string]any{{"producto_id": productoID, "cantidad": 5}},
	}), env.token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Stock untouched.
	var p model.Producto
	require.NoError(t, env.db.First(&p, "id = ?", productoID).Error)
	assert.Equal(t, 2, p.Cantidad)
}

func TestE2E_VentasConcurrentesNuncaSobrevenden(t *testing.T) {
	env := setupTestEnv(t)
	productoID := env.crearProducto(t, "Último stock", "7501000000103", 50.0, 5)

	const compradores = 10
	var wg sync.WaitGroup
	statuses := make([]int, compradores)
	for i := 0; i < compradores; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := do(t, env.server, http.MethodPost, "/v1/ventas", jsonBody(t, map[string]any{
				"productos": []map[string]any{{"producto_id": productoID, "cantidad": 1}},
			}), env.token)
			statuses[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	creadas := 0
	for _, s := range statuses {
		if s == http.StatusCreated {
			creadas++
		} else {
			assert.Contains(t, []int{http.StatusConflict, http.StatusServiceUnavailable}, s,
				fmt.Sprintf("status inesperado %d", s))
		}
	}
	assert.Equal(t, 5, creadas, "solo caben 5 unidades")

	var p model.Producto
	require.NoError(t, env.db.First(&p, "id = ?", productoID).Error)
	assert.Equal(t, 0, p.Cantidad, "el stock nunca queda negativo")
}

func TestE2E_EliminarDefinitivoConservaHistorial(t *testing.T) {
	env := setupTestEnv(t)
	productoID := env.crearProducto(t, "Descontinuado 500g", "7501000000104", 25.0, 8)

	resp := do(t, env.server, http.MethodPost, "/v1/ventas", jsonBody(t, map[string]any{
		"productos": []map[string]any{{"producto_id": productoID, "cantidad": 2}},
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var ventaEnv envelope
	decodeJSON(t, resp, &ventaEnv)
	var venta struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(ventaEnv.Data, &venta))

	// Hard delete must succeed even though the product has sale history and
	// ledger entries referencing it.
	resp = do(t, env.server, http.MethodDelete, "/v1/productos/"+productoID+"/definitivo", nil, env.token)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, http.MethodGet, "/v1/productos/"+productoID, nil, env.token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// The sale still reads in full off the denormalized snapshot.
	resp = do(t, env.server, http.MethodGet, "/v1/ventas/"+venta.ID, nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detalleEnv envelope
	decodeJSON(t, resp, &detalleEnv)
	var detalle struct {
		Items []struct {
			Nombre         string `json:"nombre"`
			PrecioUnitario string `json:"precio_unitario"`
			Cantidad       int    `json:"cantidad"`
		} `json:"productos"`
	}
	require.NoError(t, json.Unmarshal(detalleEnv.Data, &detalle))
	require.Len(t, detalle.Items, 1)
	assert.Equal(t, "Descontinuado 500g", detalle.Items[0].Nombre)
	assert.Equal(t, 2, detalle.Items[0].Cantidad)

	// So does the stock ledger.
	resp = do(t, env.server, http.MethodGet, "/v1/inventario/movimientos?producto_id="+productoID, nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var movsEnv envelope
	decodeJSON(t, resp, &movsEnv)
	var movs []struct {
		Tipo string `json:"tipo"`
	}
	require.NoError(t, json.Unmarshal(movsEnv.Data, &movs))
	require.NotEmpty(t, movs)
	assert.Equal(t, "venta", movs[0].Tipo)
}

func TestE2E_AjustesConcurrentesEncadenanLedger(t *testing.T) {
	env := setupTestEnv(t)
	productoID := env.crearProducto(t, "Arroz 1kg", "7501000000105", 28.0, 10)

	const ajustes = 6
	var wg sync.WaitGroup
	for i := 0; i < ajustes; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := do(t, env.server, http.MethodPatch, "/v1/productos/"+productoID+"/stock", jsonBody(t, map[string]any{
				"delta":  1,
				"motivo": "reposición concurrente",
			}), env.token)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			resp.Body.Close()
		}()
	}
	wg.Wait()

	var p model.Producto
	require.NoError(t, env.db.First(&p, "id = ?", productoID).Error)
	assert.Equal(t, 16, p.Cantidad)

	// Every ledger entry derives its values under the row lock, so the six
	// entries chain 10→11→…→16 with no duplicated or skipped anterior.
	var movs []model.MovimientoStock
	require.NoError(t, env.db.
		Where("producto_id = ? AND tipo = ?", productoID, "ajuste_manual").
		Order("stock_anterior ASC").
		Find(&movs).Error)
	require.Len(t, movs, ajustes)
	for i, m := range movs {
		assert.Equal(t, 10+i, m.StockAnterior)
		assert.Equal(t, 10+i+1, m.StockNuevo)
	}
}
