package infra

import (
	"fmt"

	"comerciopos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs AutoMigrate
// to create / update all tables.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// The schema is constraint-free on purpose: venta_items and
		// movimientos_stock keep denormalized snapshots, so history must stay
		// readable after a product is permanently deleted. An FK on producto_id
		// would block that delete.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations applies the schema. Also used by integration tests against a
// throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Categoria{},
		&model.Producto{},
		&model.Venta{},
		&model.VentaItem{},
		&model.MovimientoStock{},
		&model.Sucursal{},
	); err != nil {
		return err
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial index for the low-stock alert query.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_productos_bajo_stock') THEN
		    CREATE INDEX idx_productos_bajo_stock
		        ON productos (cantidad)
		        WHERE activo = true AND cantidad <= minimo_stock;
		  END IF;
		END $$`,
		// Reporting scans ventas by day; composite index keeps the dashboard cheap.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_ventas_fecha_estado') THEN
		    CREATE INDEX idx_ventas_fecha_estado ON ventas (fecha_venta, estado);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch: %w", err)
		}
	}
	return nil
}
