package database

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/johnquangdev/meeting-processor/migrations"
	"github.com/johnquangdev/meeting-processor/pkg/config"
)

// NewPostgresDB creates a new PostgreSQL connection using GORM. The first
// ping is retried with exponential backoff so the service can start before
// the database is ready.
func NewPostgresDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.GetDatabaseDSN()

	gormLogger := logger.Default.LogMode(logger.Warn)
	if cfg.Server.Environment == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MinConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = time.Minute
	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return sqlDB.PingContext(ctx)
	}
	notify := func(err error, wait time.Duration) {
		if log != nil {
			log.Warn("⏳ database not ready, retrying", zap.Error(err), zap.Duration("wait", wait))
		}
	}
	if err := backoff.RetryNotify(ping, b, notify); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if log != nil {
		log.Info("✅ Database connected successfully",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Name),
		)
	}
	return db, nil
}

// MigrationSource returns the embedded migration set
func MigrationSource() migrate.MigrationSource {
	return &migrate.HttpFileSystemMigrationSource{FileSystem: http.FS(migrations.FS)}
}

// Migrate applies or rolls back migrations. max limits the number of
// migrations applied; zero means all.
func Migrate(db *gorm.DB, dir migrate.MigrationDirection, max int) (int, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get db connection during migrate: %w", err)
	}

	n, err := migrate.ExecMax(sqlDB, "postgres", MigrationSource(), dir, max)
	if err != nil {
		return n, fmt.Errorf("failed to apply migration: %w", err)
	}
	return n, nil
}

// AutoMigrate applies every pending migration
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	n, err := Migrate(db, migrate.Up, 0)
	if err != nil {
		return err
	}
	if log != nil {
		log.Info("✅ Migrations applied", zap.Int("count", n))
	}
	return nil
}

// MigrationStatus lists every known migration and when it was applied
func MigrationStatus(db *gorm.DB) ([]*migrate.PlannedMigration, []*migrate.MigrationRecord, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database object: %w", err)
	}
	records, err := migrate.GetMigrationRecords(sqlDB, "postgres")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read migration records: %w", err)
	}
	planned, _, err := migrate.PlanMigration(sqlDB, "postgres", MigrationSource(), migrate.Up, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to plan migrations: %w", err)
	}
	return planned, records, nil
}

// CloseDB closes the database connection
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
