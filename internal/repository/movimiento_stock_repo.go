package repository

import (
	"context"

	"comerciopos/internal/dto"
	"comerciopos/internal/model"

	"gorm.io/gorm"
)

// MovimientoStockRepository persists the append-only stock ledger.
type MovimientoStockRepository interface {
	Create(ctx context.Context, m *model.MovimientoStock) error
	// CreateTx writes a ledger entry inside a sale transaction.
	CreateTx(tx *gorm.DB, m *model.MovimientoStock) error
	List(ctx context.Context, filter dto.MovimientoFilter) ([]model.MovimientoStock, error)
}

type movimientoStockRepo struct{ db *gorm.DB }

func NewMovimientoStockRepository(db *gorm.DB) MovimientoStockRepository {
	return &movimientoStockRepo{db: db}
}

func (r *movimientoStockRepo) Create(ctx context.Context, m *model.MovimientoStock) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *movimientoStockRepo) CreateTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return tx.Create(m).Error
}

func (r *movimientoStockRepo) List(ctx context.Context, filter dto.MovimientoFilter) ([]model.MovimientoStock, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoStock{})
	if filter.ProductoID != "" {
		q = q.Where("producto_id = ?", filter.ProductoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	var movs []model.MovimientoStock
	err := q.Preload("Producto").Order("created_at DESC").Limit(filter.Limit).Find(&movs).Error
	return movs, err
}
