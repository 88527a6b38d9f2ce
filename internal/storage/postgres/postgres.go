package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Storage struct {
	Pool *pgxpool.Pool
}

func NewPostgresPool(username, password, host, port, dbName string) (*Storage, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s", username, password, host, port, dbName)
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Storage{Pool: pool}, nil
}

// EnsureSchema creates the tables this service owns if they are missing.
func (p *Storage) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS presentations (
			id            UUID PRIMARY KEY,
			author_id     UUID NOT NULL,
			file_name     TEXT NOT NULL,
			total_slides  INT NOT NULL,
			uploaded_at   TIMESTAMPTZ NOT NULL,
			slides        JSONB NOT NULL DEFAULT '[]',
			resources     JSONB NOT NULL DEFAULT '[]',
			lesson_breaks JSONB NOT NULL DEFAULT '[]',
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_presentations_author ON presentations(author_id)`,
		`CREATE TABLE IF NOT EXISTS presentation_progress (
			user_id             UUID NOT NULL,
			presentation_id     UUID NOT NULL REFERENCES presentations(id) ON DELETE CASCADE,
			current_slide       INT NOT NULL DEFAULT 1,
			slides_viewed       INT[] NOT NULL DEFAULT '{}',
			resources_completed TEXT[] NOT NULL DEFAULT '{}',
			completed           BOOLEAN NOT NULL DEFAULT false,
			time_spent_seconds  INT NOT NULL DEFAULT 0,
			updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, presentation_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := p.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (p *Storage) Ping(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}

func (p *Storage) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

// UnwrapPgError returns the server error behind err, or nil.
func UnwrapPgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)
