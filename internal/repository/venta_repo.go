package repository

import (
	"context"
	"time"

	"comerciopos/internal/dto"
	"comerciopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	// CreateTx inserts the venta and its items inside an open transaction.
	// Ventas are append-only: there is no update or delete.
	CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, error)
	// ListBetween returns completed ventas in [desde, hasta) for reporting.
	ListBetween(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error)
	DB() *gorm.DB // exposes the DB for transaction creation in the service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items.Producto").First(&v, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, error) {
	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.FechaInicio != "" {
		q = q.Where("fecha_venta >= ?", filter.FechaInicio)
	}
	if filter.FechaFin != "" {
		// inclusive end of day
		q = q.Where("fecha_venta < (?::date + INTERVAL '1 day')", filter.FechaFin)
	}
	if filter.Vendedor != "" {
		q = q.Where("vendedor = ?", filter.Vendedor)
	}
	if filter.MetodoPago != "" {
		q = q.Where("metodo_pago = ?", filter.MetodoPago)
	}

	var ventas []model.Venta
	err := q.Preload("Items").
		Order("fecha_venta DESC").
		Limit(filter.Limit).
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) ListBetween(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Where("fecha_venta >= ? AND fecha_venta < ? AND estado = ?", desde, hasta, "completada").
		Preload("Items").
		Order("fecha_venta DESC").
		Find(&ventas).Error
	return ventas, err
}
