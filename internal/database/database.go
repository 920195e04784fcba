// Package database handles database connections and migrations.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"forumcore/internal/config"
	"forumcore/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var readDB *gorm.DB

const pingTimeout = 3 * time.Second

// Dialector returns the gorm dialector for the configured driver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		return sqlite.Open(SQLiteDSN(cfg.DBPath)), nil
	case config.DriverPostgres, "":
		return postgres.Open(postgresDSN(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// SQLiteDSN enables foreign key enforcement, which SQLite leaves off by default.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "_foreign_keys") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	if path == ":memory:" {
		path = "file::memory:"
	}
	return path + sep + "_foreign_keys=on"
}

func postgresDSN(host, port, user, password, name, sslMode string) string {
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, name, sslMode,
	)
}

// Open opens a gorm handle on dialector with the slog logger and metrics plugin installed.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(observability.Logger),
	})
	if err != nil {
		return nil, err
	}
	if err := db.Use(observability.DatabaseMetrics{}); err != nil {
		return nil, fmt.Errorf("install metrics plugin: %w", err)
	}
	return db, nil
}

// Connect opens the primary database, applies pool settings and returns the handle.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := Open(dialector)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := configurePool(db, cfg); err != nil {
		return nil, err
	}
	if err := Ping(context.Background(), db, pingTimeout); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	observability.Logger.Info("Database connected successfully", slog.String("driver", cfg.DBDriver))

	if err := connectReadReplica(cfg); err != nil {
		observability.Logger.Warn("Read replica unavailable, listings use the primary", slog.String("error", err.Error()))
	}

	return db, nil
}

// Ping verifies connectivity within timeout.
func Ping(ctx context.Context, db *gorm.DB, timeout time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.DBDriver == config.DriverSQLite {
		// SQLite serializes writers; one connection keeps in-memory databases shared.
		sqlDB.SetMaxOpenConns(1)
		return nil
	}

	if cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
	if cfg.DBConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeMinutes) * time.Minute)
	}
	return nil
}

func connectReadReplica(cfg *config.Config) error {
	readDB = nil
	if cfg.DBDriver != config.DriverPostgres || cfg.DBReadHost == "" {
		return nil
	}

	db, err := Open(postgres.Open(postgresDSN(
		cfg.DBReadHost, cfg.DBReadPort, cfg.DBReadUser, cfg.DBReadPassword, cfg.DBName, cfg.DBSSLMode,
	)))
	if err != nil {
		return err
	}
	if err := configurePool(db, cfg); err != nil {
		return err
	}
	if err := Ping(context.Background(), db, pingTimeout); err != nil {
		return err
	}
	readDB = db
	observability.Logger.Info("Read replica connected", slog.String("host", cfg.DBReadHost))
	return nil
}

// ReaderOr returns the read replica when configured, otherwise primary.
func ReaderOr(primary *gorm.DB) *gorm.DB {
	if readDB != nil {
		return readDB
	}
	return primary
}
