package tests

import (
	"context"
	"testing"

	"comerciopos/internal/dto"
	"comerciopos/internal/events"
	"comerciopos/internal/model"
	"comerciopos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildProductoSvc() (service.ProductoService, *stubProductoRepo, *stubCategoriaRepo, *stubMovimientoRepo) {
	productoRepo := newStubProductoRepo()
	categoriaRepo := newStubCategoriaRepo()
	movRepo := &stubMovimientoRepo{}
	svc := service.NewProductoService(productoRepo, categoriaRepo, movRepo, events.NewBus(), nil, nil)
	return svc, productoRepo, categoriaRepo, movRepo
}

func seedCategoria(repo *stubCategoriaRepo, nombre string) *model.Categoria {
	c := &model.Categoria{ID: uuid.New(), Nombre: nombre, Activo: true}
	_ = repo.Crear(context.Background(), c)
	return c
}

func TestCrearProducto(t *testing.T) {
	svc, _, categoriaRepo, _ := buildProductoSvc()
	cat := seedCategoria(categoriaRepo, "Bebidas")

	resp, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		CodigoBarras:  "7501031311309",
		Nombre:        "Jugo de naranja 1L",
		CategoriaID:   cat.ID.String(),
		PrecioCompra:  decimal.NewFromFloat(18.0),
		PrecioPublico: decimal.NewFromFloat(32.0),
		Cantidad:      24,
		MinimoStock:   6,
	})
	require.NoError(t, err)
	assert.True(t, resp.Activo)
	assert.Equal(t, 24, resp.Cantidad)
}

func TestCrearProducto_CategoriaInexistente(t *testing.T) {
	svc, _, _, _ := buildProductoSvc()

	_, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		CodigoBarras:  "7501031311310",
		Nombre:        "Sin categoria",
		CategoriaID:   uuid.NewString(),
		PrecioPublico: decimal.NewFromFloat(10.0),
	})

	var catNoEncontrada *service.CategoriaNoEncontradaError
	require.ErrorAs(t, err, &catNoEncontrada)
}

func TestCrearProducto_BarcodeDuplicado(t *testing.T) {
	svc, productoRepo, categoriaRepo, _ := buildProductoSvc()
	cat := seedCategoria(categoriaRepo, "Abarrotes")
	seedProducto(productoRepo, "Existente", "7501031311311", 10.0, 5, 1)

	_, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		CodigoBarras:  "7501031311311",
		Nombre:        "Duplicado",
		CategoriaID:   cat.ID.String(),
		PrecioPublico: decimal.NewFromFloat(10.0),
	})
	assert.ErrorIs(t, err, service.ErrCodigoBarrasDuplicado)
}

func TestAjustarStock_EntradaConLedger(t *testing.T) {
	svc, productoRepo, _, movRepo := buildProductoSvc()
	p := seedProducto(productoRepo, "Harina 1kg", "7501031311312", 22.0, 4, 2)

	resp, err := svc.AjustarStock(context.Background(), p.ID, dto.AjustarStockRequest{
		Delta:  10,
		Motivo: "reposición semanal",
	})
	require.NoError(t, err)
	assert.Equal(t, 14, resp.Cantidad)
	assert.Equal(t, 14, productoRepo.stock(p.ID))

	movs, err := movRepo.List(context.Background(), dto.MovimientoFilter{Tipo: "ajuste_manual"})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, 10, movs[0].Cantidad)
	assert.Equal(t, 4, movs[0].StockAnterior)
	assert.Equal(t, 14, movs[0].StockNuevo)
	assert.Equal(t, "reposición semanal", movs[0].Motivo)
}

func TestAjustarStock_NuncaNegativo(t *testing.T) {
	svc, productoRepo, _, _ := buildProductoSvc()
	p := seedProducto(productoRepo, "Sal 1kg", "7501031311313", 9.0, 3, 1)

	resp, err := svc.AjustarStock(context.Background(), p.ID, dto.AjustarStockRequest{
		Delta:  -50,
		Motivo: "merma por caducidad",
	})
	require.NoError(t, err)
	// Floored at zero, never negative.
	assert.Equal(t, 0, resp.Cantidad)
	assert.Equal(t, 0, productoRepo.stock(p.ID))
}

func TestListarActivos_ExcluyeSinStockEInactivos(t *testing.T) {
	svc, productoRepo, _, _ := buildProductoSvc()
	seedProducto(productoRepo, "Disponible", "7501031311314", 10.0, 5, 1)
	agotado := seedProducto(productoRepo, "Agotado", "7501031311315", 10.0, 0, 1)
	inactivo := seedProducto(productoRepo, "Inactivo", "7501031311316", 10.0, 9, 1)
	require.NoError(t, productoRepo.SoftDelete(context.Background(), inactivo.ID))

	activos, err := svc.ListarActivos(context.Background())
	require.NoError(t, err)
	require.Len(t, activos, 1)
	assert.Equal(t, "Disponible", activos[0].Nombre)
	assert.NotEqual(t, agotado.ID.String(), activos[0].ID)
}

func TestObtenerAlertas(t *testing.T) {
	productoRepo := newStubProductoRepo()
	movRepo := &stubMovimientoRepo{}
	svc := service.NewInventarioService(productoRepo, movRepo)

	seedProducto(productoRepo, "Sobrado", "7501031311317", 10.0, 50, 5)
	bajo := seedProducto(productoRepo, "Bajo", "7501031311318", 10.0, 2, 5)
	justo := seedProducto(productoRepo, "Justo", "7501031311319", 10.0, 5, 5)

	alertas, err := svc.ObtenerAlertas(context.Background())
	require.NoError(t, err)
	require.Len(t, alertas, 2)

	ids := map[string]bool{}
	for _, a := range alertas {
		ids[a.ProductoID] = true
	}
	assert.True(t, ids[bajo.ID.String()])
	assert.True(t, ids[justo.ID.String()], "cantidad == minimo también alerta")
}

func TestListarMovimientos_FiltroPorProducto(t *testing.T) {
	productoRepo := newStubProductoRepo()
	movRepo := &stubMovimientoRepo{}
	svc := service.NewInventarioService(productoRepo, movRepo)

	a := seedProducto(productoRepo, "A", "7501031311320", 10.0, 5, 1)
	b := seedProducto(productoRepo, "B", "7501031311321", 10.0, 5, 1)
	for _, pid := range []uuid.UUID{a.ID, a.ID, b.ID} {
		require.NoError(t, movRepo.Create(context.Background(), &model.MovimientoStock{
			ProductoID: pid, Tipo: "ajuste_manual", Cantidad: 1, StockAnterior: 1, StockNuevo: 2,
		}))
	}

	movs, err := svc.ListarMovimientos(context.Background(), dto.MovimientoFilter{ProductoID: a.ID.String()})
	require.NoError(t, err)
	assert.Len(t, movs, 2)
}

func TestAjustarStock_LedgerEncadenado(t *testing.T) {
	svc, productoRepo, _, movRepo := buildProductoSvc()
	p := seedProducto(productoRepo, "Aceite 1L", "7501031311322", 45.0, 10, 2)

	_, err := svc.AjustarStock(context.Background(), p.ID, dto.AjustarStockRequest{Delta: 5, Motivo: "reposición"})
	require.NoError(t, err)
	_, err = svc.AjustarStock(context.Background(), p.ID, dto.AjustarStockRequest{Delta: -3, Motivo: "merma"})
	require.NoError(t, err)

	movs, err := movRepo.List(context.Background(), dto.MovimientoFilter{ProductoID: p.ID.String()})
	require.NoError(t, err)
	require.Len(t, movs, 2)

	// Each entry derives from the quantity read under the same tx, so entries
	// chain: the second anterior is the first nuevo.
	assert.Equal(t, 10, movs[0].StockAnterior)
	assert.Equal(t, 15, movs[0].StockNuevo)
	assert.Equal(t, movs[0].StockNuevo, movs[1].StockAnterior)
	assert.Equal(t, 12, movs[1].StockNuevo)
	assert.Equal(t, 12, productoRepo.stock(p.ID))
}
