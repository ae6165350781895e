package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/justsurfingit/hirepath/internal/config"
	"github.com/justsurfingit/hirepath/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the configured database and runs migrations.
func Connect(settings config.DatabaseSettings, log *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch settings.Type {
	case config.PostgresDBType:
		dialector = postgres.Open(settings.DSN)
	case config.SqliteDBType:
		dsn := settings.DSN
		if dsn == "" {
			dsn = ":memory:"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", settings.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// Maps driver errors to gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated.
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger: gormlogger.NewSlogLogger(log.With("component", "gorm"), gormlogger.Config{
			LogLevel:                  gormlogger.Warn,
			SlowThreshold:             time.Second,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established", "type", settings.Type)

	log.Info("Running migrations")
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}
