package db

import (
	"fmt"
	"strings"
	"time"

	"backoffice/internal/config"
	"backoffice/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// GormConfig returns the gorm settings shared by the postgres and sqlite connections.
func GormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	}
}

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("database URL must not be empty")
	}

	db, err := gorm.Open(postgres.Open(cfg.URL), GormConfig(logger.Warn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	return db, nil
}

// Models lists every table the console owns, in migration order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Ingredient{},
		&models.Product{},
		&models.ProductVariant{},
		&models.RecipeLine{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database handle is nil")
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	return ensureRecipeLineIndexes(db)
}

// recipeLineIndexes keep one live line per (scope, ingredient) pair. Base
// lines carry a NULL variant_id, which a plain composite unique index would
// treat as distinct, so each scope gets its own partial index. Soft-deleted
// rows are excluded so a removed override can be recreated.
var recipeLineIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_recipe_lines_base_scope
		ON recipe_lines (product_id, ingredient_id)
		WHERE variant_id IS NULL AND deleted_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_recipe_lines_variant_scope
		ON recipe_lines (product_id, variant_id, ingredient_id)
		WHERE variant_id IS NOT NULL AND deleted_at IS NULL`,
}

func ensureRecipeLineIndexes(db *gorm.DB) error {
	for _, statement := range recipeLineIndexes {
		if err := db.Exec(statement).Error; err != nil {
			return fmt.Errorf("create recipe line index: %w", err)
		}
	}
	return nil
}

func Configure(cfg config.DatabaseConfig) (*gorm.DB, error) {
	database, err := Initialize(cfg)
	if err != nil {
		return nil, err
	}

	if err := AutoMigrate(database); err != nil {
		return nil, err
	}

	DB = database

	return database, nil
}

func MustConfigure(cfg config.DatabaseConfig) *gorm.DB {
	database, err := Configure(cfg)
	if err != nil {
		panic(err)
	}

	return database
}

func Get() *gorm.DB {
	return DB
}
