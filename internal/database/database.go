// Package database owns the SQLite store holding the visit log and its aggregates.
package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"visitortracker/internal/config"
	"visitortracker/internal/visits"
)

// DBManager wraps cartridge's sqlite.Manager with schema migration.
type DBManager struct {
	*sqlite.Manager
	path   string
	logger *slog.Logger
}

// NewDBManager creates a new database manager using cartridge's sqlite.Manager.
func NewDBManager(cfg *config.Config, logger *slog.Logger) *DBManager {
	sqliteCfg := sqlite.Config{
		Path:         cfg.GetDatabasePath(),
		MaxOpenConns: cfg.GetMaxOpenConns(),
		MaxIdleConns: cfg.GetMaxIdleConns(),
		Logger:       logger,
		EnableWAL:    true,
		TxImmediate:  true,
		BusyTimeout:  5000,
	}

	return &DBManager{
		Manager: sqlite.NewManager(sqliteCfg),
		path:    sqliteCfg.Path,
		logger:  logger,
	}
}

// Init creates the storage directory and opens the connection pool.
func (dm *DBManager) Init() error {
	if dir := filepath.Dir(dm.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}

	if _, err := dm.Manager.Connect(); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", dm.path, err)
	}
	return nil
}

// Path returns the database file location.
func (dm *DBManager) Path() string {
	return dm.path
}

// MigrateDatabase creates visitor_logs, page_statistics and daily_statistics
// (with their indexes) when they are missing.
func (dm *DBManager) MigrateDatabase() error {
	db := dm.GetConnection()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(visits.AllModels()...)
	})
	if err != nil {
		dm.logger.Error("Failed to auto-migrate database", slog.Any("error", err))
		return err
	}

	if err := dm.CheckpointWAL("FULL"); err != nil {
		dm.logger.Warn("Failed to checkpoint WAL after migration", slog.Any("error", err))
	}

	dm.logger.Info("Database migration completed successfully", slog.String("path", dm.path))
	return nil
}
