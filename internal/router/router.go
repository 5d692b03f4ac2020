package router

import (
	"time"

	"comerciopos/internal/config"
	"comerciopos/internal/events"
	"comerciopos/internal/handler"
	"comerciopos/internal/infra"
	"comerciopos/internal/middleware"
	"comerciopos/internal/repository"
	"comerciopos/internal/service"
	"comerciopos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, bus *events.Bus, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	sucursalRepo := repository.NewSucursalRepository(db)
	movimientoRepo := repository.NewMovimientoStockRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	catalogo := service.NewCatalogoCache(rdb, time.Duration(cfg.CatalogoTTLSeconds)*time.Second)
	dispatcher := worker.NewDispatcher(rdb)

	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, categoriaRepo, movimientoRepo, bus, catalogo, dispatcher)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, movimientoRepo, bus, catalogo, dispatcher)
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoRepo)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	sucursalSvc := service.NewSucursalService(sucursalRepo)
	reporteSvc := service.NewReporteService(ventaRepo, productoRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	sucursalesH := handler.NewSucursalesHandler(sucursalSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)
	eventosH := handler.NewEventosHandler(bus)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB, bus))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/configurar-mfa", middleware.LoginRateLimiter(), authH.ConfigurarMFA)
		auth.POST("/verificar-otp", middleware.LoginRateLimiter(), authH.VerificarOTP)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: vendedor, supervisor, administrador — declared per-endpoint
		v1.POST("/ventas", middleware.RequireRole("vendedor", "supervisor", "administrador"), ventasH.RegistrarVenta)
		v1.GET("/ventas", middleware.RequireRole("vendedor", "supervisor", "administrador"), ventasH.ListarVentas)
		v1.GET("/ventas/:id", middleware.RequireRole("vendedor", "supervisor", "administrador"), ventasH.ObtenerVenta)

		// Checkout catalog — cached, active products with stock
		v1.GET("/productos-activos", middleware.RequireRole("vendedor", "supervisor", "administrador"), productosH.ListarActivos)

		v1.GET("/productos", middleware.RequireRole("vendedor", "supervisor", "administrador"), productosH.Listar)
		v1.GET("/productos/:id", middleware.RequireRole("vendedor", "supervisor", "administrador"), productosH.ObtenerPorID)
		v1.GET("/productos/barcode/:barcode", middleware.RequireRole("vendedor", "supervisor", "administrador"), productosH.ObtenerPorBarcode)
		// Stock adjustments — supervisor or administrador
		v1.PATCH("/productos/:id/stock", middleware.RequireRole("supervisor", "administrador"), productosH.AjustarStock)
		// Write operations — administrador only
		prods := v1.Group("/productos", middleware.RequireRole("administrador"))
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
			prods.DELETE("/:id/definitivo", productosH.EliminarDefinitivo)
		}

		inv := v1.Group("/inventario", middleware.RequireRole("supervisor", "administrador"))
		{
			inv.GET("/alertas", inventarioH.ObtenerAlertas)
			inv.GET("/movimientos", inventarioH.ListarMovimientos)
		}

		// Categorías — administrador can write, all authenticated can read
		v1.GET("/categorias", middleware.RequireRole("vendedor", "supervisor", "administrador"), categoriasH.Listar)
		categorias := v1.Group("/categorias", middleware.RequireRole("administrador"))
		{
			categorias.POST("", categoriasH.Crear)
			categorias.PUT("/:id", categoriasH.Actualizar)
			categorias.DELETE("/:id", categoriasH.Desactivar)
		}

		// Sucursales — administrador writes, all authenticated read
		v1.GET("/sucursales", middleware.RequireRole("vendedor", "supervisor", "administrador"), sucursalesH.Listar)
		v1.GET("/sucursales/:id", middleware.RequireRole("vendedor", "supervisor", "administrador"), sucursalesH.ObtenerPorID)
		sucursales := v1.Group("/sucursales", middleware.RequireRole("administrador"))
		{
			sucursales.POST("", sucursalesH.Crear)
			sucursales.PUT("/:id", sucursalesH.Actualizar)
			sucursales.DELETE("/:id", sucursalesH.Desactivar)
		}

		v1.GET("/reportes/dashboard", middleware.RequireRole("supervisor", "administrador"), reportesH.Dashboard)

		// Live updates — any authenticated role may listen
		v1.GET("/eventos", middleware.RequireRole("vendedor", "supervisor", "administrador"), eventosH.Stream)

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
