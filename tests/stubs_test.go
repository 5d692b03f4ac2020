package tests

import (
	"context"
	"sync"
	"time"

	"comerciopos/internal/dto"
	"comerciopos/internal/model"
	"comerciopos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory ProductoRepository stub ────────────────────────────────────────
// Guarded by a mutex so concurrent-sale tests exercise real interleavings.

type stubProductoRepo struct {
	mu        sync.Mutex
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) FindByBarcode(_ context.Context, barcode string) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.productos {
		if p.CodigoBarras == barcode && p.Activo {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Producto
	for _, p := range r.productos {
		if p.Activo {
			result = append(result, *p)
		}
	}
	return result, int64(len(result)), nil
}

func (r *stubProductoRepo) ListActivos(_ context.Context) ([]model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Producto
	for _, p := range r.productos {
		if p.Activo && p.Cantidad > 0 {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *stubProductoRepo) ListBajoStock(_ context.Context) ([]model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Producto
	for _, p := range r.productos {
		if p.Activo && p.Cantidad <= p.MinimoStock {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

func (r *stubProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = true
	return nil
}

func (r *stubProductoRepo) HardDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.productos, id)
	return nil
}

func (r *stubProductoRepo) AjustarStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Cantidad += delta
	if p.Cantidad < 0 {
		p.Cantidad = 0
	}
	return nil
}

func (r *stubProductoRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	return r.FindByID(context.Background(), id)
}

// DescontarStockTx mimics the conditional decrement: it only applies when the
// current quantity covers the request, otherwise it reports a write conflict.
func (r *stubProductoRepo) DescontarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok || p.Cantidad < cantidad {
		return repository.ErrStockConflict
	}
	p.Cantidad -= cantidad
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// stock returns the current quantity for assertions.
func (r *stubProductoRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.productos[id].Cantidad
}

// ── In-memory VentaRepository stub ───────────────────────────────────────────

type stubVentaRepo struct {
	mu     sync.Mutex
	ventas map[uuid.UUID]*model.Venta
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) CreateTx(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	for i := range v.Items {
		if v.Items[i].ID == uuid.Nil {
			v.Items[i].ID = uuid.New()
		}
		v.Items[i].VentaID = v.ID
	}
	cp := *v
	r.ventas[v.ID] = &cp
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *stubVentaRepo) List(_ context.Context, filter dto.VentaFilter) ([]model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Venta
	for _, v := range r.ventas {
		if filter.Vendedor != "" && v.Vendedor != filter.Vendedor {
			continue
		}
		if filter.MetodoPago != "" && v.MetodoPago != filter.MetodoPago {
			continue
		}
		result = append(result, *v)
	}
	return result, nil
}

func (r *stubVentaRepo) ListBetween(_ context.Context, desde, hasta time.Time) ([]model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Venta
	for _, v := range r.ventas {
		if v.Estado != "completada" {
			continue
		}
		if v.FechaVenta.Before(desde) || !v.FechaVenta.Before(hasta) {
			continue
		}
		result = append(result, *v)
	}
	return result, nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

func (r *stubVentaRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ventas)
}

// ── In-memory MovimientoStockRepository stub ─────────────────────────────────

type stubMovimientoRepo struct {
	mu          sync.Mutex
	movimientos []model.MovimientoStock
}

func (r *stubMovimientoRepo) Create(_ context.Context, m *model.MovimientoStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	return r.Create(context.Background(), m)
}

func (r *stubMovimientoRepo) List(_ context.Context, filter dto.MovimientoFilter) ([]model.MovimientoStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.MovimientoStock
	for _, m := range r.movimientos {
		if filter.ProductoID != "" && m.ProductoID.String() != filter.ProductoID {
			continue
		}
		if filter.Tipo != "" && m.Tipo != filter.Tipo {
			continue
		}
		result = append(result, m)
	}
	return result, nil
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

func (r *stubMovimientoRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.movimientos)
}

// ── In-memory UsuarioRepository stub ─────────────────────────────────────────

type stubUsuarioRepo struct {
	mu       sync.Mutex
	usuarios map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.usuarios[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.usuarios {
		if u.Username == username && u.Activo {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) List(_ context.Context, incluirInactivos bool) ([]model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Usuario
	for _, u := range r.usuarios {
		if !incluirInactivos && !u.Activo {
			continue
		}
		result = append(result, *u)
	}
	return result, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.usuarios[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.usuarios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = false
	return nil
}

func (r *stubUsuarioRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.usuarios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = true
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// ── In-memory CategoriaRepository stub ───────────────────────────────────────

type stubCategoriaRepo struct {
	mu         sync.Mutex
	categorias map[uuid.UUID]*model.Categoria
}

func newStubCategoriaRepo() *stubCategoriaRepo {
	return &stubCategoriaRepo{categorias: make(map[uuid.UUID]*model.Categoria)}
}

func (r *stubCategoriaRepo) Crear(_ context.Context, c *model.Categoria) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.categorias[c.ID] = &cp
	return nil
}

func (r *stubCategoriaRepo) Listar(_ context.Context, incluirInactivas bool) ([]model.Categoria, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Categoria
	for _, c := range r.categorias {
		if !incluirInactivas && !c.Activo {
			continue
		}
		result = append(result, *c)
	}
	return result, nil
}

func (r *stubCategoriaRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.Categoria, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categorias[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCategoriaRepo) ObtenerPorNombre(_ context.Context, nombre string) (*model.Categoria, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categorias {
		if c.Nombre == nombre {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoriaRepo) Actualizar(_ context.Context, c *model.Categoria) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.categorias[c.ID] = &cp
	return nil
}

func (r *stubCategoriaRepo) Desactivar(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categorias[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Activo = false
	return nil
}

var _ repository.CategoriaRepository = (*stubCategoriaRepo)(nil)

// ── Seed helpers ─────────────────────────────────────────────────────────────

func seedProducto(repo *stubProductoRepo, nombre, barcode string, precio float64, cantidad, minimo int) *model.Producto {
	p := &model.Producto{
		ID:            uuid.New(),
		CodigoBarras:  barcode,
		Nombre:        nombre,
		CategoriaID:   uuid.New(),
		PrecioCompra:  decimal.NewFromFloat(precio / 2),
		PrecioPublico: decimal.NewFromFloat(precio),
		Cantidad:      cantidad,
		MinimoStock:   minimo,
		Activo:        true,
	}
	_ = repo.Create(context.Background(), p)
	return p
}
