package db

import (
	"fmt"
	"time"

	"basket-backend/internal/config"
	"basket-backend/internal/metrics"
	"basket-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the postgres connection and migrates the schema. The
// returned handle is injected into the container; there is no package
// global.
func Connect(cfg config.DatabaseConfig, logger *logrus.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		metrics.DBConnectionStatus.Set(0)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := gdb.AutoMigrate(
		&models.Chain{},
		&models.Asset{},
		&models.MultiChainAsset{},
		&models.Basket{},
		&models.MultiChainBasket{},
		&models.MintRecord{},
		&models.MultiChainMintRecord{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	metrics.DBConnectionStatus.Set(1)
	logger.Info("database connected and migrated")
	return gdb, nil
}
