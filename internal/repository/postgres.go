package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"hotelbot/internal/model"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ErrSearchNotFound is returned when feedback names a search that was never logged
var ErrSearchNotFound = errors.New("search not found")

// PostgresRepository stores the search log
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing connection pool
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func migrationSource() (source.Driver, error) {
	return iofs.New(migrationFiles, "migrations")
}

// Migrate applies pending schema migrations. Already-applied migrations are skipped.
func (r *PostgresRepository) Migrate(log *zap.SugaredLogger) error {
	src, err := migrationSource()
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(r.db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Database is up to date, no migrations to apply")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		log.Infow("Migrations applied successfully")
	} else {
		log.Infow("Migrations applied successfully", "version", version, "dirty", dirty)
	}
	return nil
}

// LogSearch records one completed search
func (r *PostgresRepository) LogSearch(ctx context.Context, entry *model.SearchLog) error {
	query := `
		INSERT INTO search_logs (
			search_id, message, slots, result_count, cheapest_total,
			currency, used_fallback, error_kind, response_time_ms
		) VALUES (
			:search_id, :message, :slots, :result_count, :cheapest_total,
			:currency, :used_fallback, NULLIF(:error_kind, ''), :response_time_ms
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

// LogFeedback records what the user did with an offer from a logged search
func (r *PostgresRepository) LogFeedback(ctx context.Context, searchID, hotelID, action string) error {
	query := `
		UPDATE search_logs
		SET clicked_hotel_id = $2, action = $3, action_at = NOW()
		WHERE search_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, searchID, hotelID, action)
	if err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSearchNotFound
	}
	return nil
}
