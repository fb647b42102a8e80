package database

import (
	"fmt"

	"github.com/JonnyWalker81/moodtrack/backend/internal/config"
	"github.com/JonnyWalker81/moodtrack/backend/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewPostgresDB opens the connection pool used by the gorm-backed repositories.
// The pool is owned by the caller, which must Close it on shutdown.
func NewPostgresDB(cfg config.DatabaseConfig, log logger.Logger) (*gorm.DB, error) {
	logMode := gormlogger.Warn
	if log.Level() == logger.LevelDebug {
		logMode = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info("database connection established",
		logger.Int("max_open_conns", cfg.MaxOpenConns),
		logger.Int("max_idle_conns", cfg.MaxIdleConns),
	)

	return db, nil
}

// Close releases the connection pool behind db
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
