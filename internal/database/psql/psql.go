package psql

import (
	databaseerrors "cartwidget/internal/database"
	"cartwidget/pkg/lib/logger/sl"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

// Storage keeps widget key-value pairs in the widget_storage table, one
// row per (namespace, key).
type Storage struct {
	log *slog.Logger
	db  *sqlx.DB
}

func New(log *slog.Logger, connStr string, migrationsDir string) (*Storage, error) {
	const op = "database.psql.New"
	opLog := log.With("op", op)

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		opLog.Error("Error connect to database", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		db.Close()
		opLog.Error("Error setting migrations dialect", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := goose.Up(db.DB, migrationsDir); err != nil {
		db.Close()
		opLog.Error("Error applying migrations", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		log: log,
		db:  db,
	}, nil
}

func NewWithParams(log *slog.Logger, db *sqlx.DB) *Storage {
	return &Storage{
		log: log,
		db:  db,
	}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Get(ctx context.Context, namespace, key string) (string, error) {
	const op = "database.psql.Get"
	log := s.log.With(
		"op", op,
	)

	select {
	case <-ctx.Done():
		log.Error("Context is over", sl.Err(ctx.Err()))
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var value string
	if err := s.db.QueryRowxContext(ctx, `
		SELECT value FROM widget_storage
		WHERE namespace=$1 AND key=$2;
	`, namespace, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
		}

		log.Error("Error reading value", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return value, nil
}

func (s *Storage) Set(ctx context.Context, namespace, key, value string) error {
	const op = "database.psql.Set"
	log := s.log.With(
		"op", op,
	)

	select {
	case <-ctx.Done():
		log.Error("Context is over", sl.Err(ctx.Err()))
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	// last writer wins, same as the browser store
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO widget_storage (namespace, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now();
	`, namespace, key, value); err != nil {
		log.Error("Failed to write value", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
