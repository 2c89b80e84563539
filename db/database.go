package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"mc-launcher/config"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// dialector picks the gorm driver for the configured backend.
func dialector(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite, "":
		return gormlite.Open(cfg.DatabasePath), nil
	case config.BackendPostgres:
		return postgres.Open(cfg.DatabaseDSN), nil
	case config.BackendMySQL:
		return mysql.Open(cfg.DatabaseDSN), nil
	default:
		return nil, fmt.Errorf("backend %q is not a SQL database", cfg.StoreBackend)
	}
}

// OpenDatabase connects to the configured SQL database and migrates the blob table.
func OpenDatabase(cfg config.Config) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	newLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      false,
			Colorful:                  true,
		},
	)

	gdb, err := gorm.Open(d, &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := gdb.AutoMigrate(&Blob{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return gdb, nil
}
