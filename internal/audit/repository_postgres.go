package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecorder persists events to the recognition_logs table.
type PostgresRecorder struct {
	db *pgxpool.Pool
}

func NewPostgresRecorder(ctx context.Context, dsn string) (*PostgresRecorder, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(ctx); err != nil {
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		return nil, err
	}

	return &PostgresRecorder{db: db}, nil
}

func initSchema(ctx context.Context, db *pgxpool.Pool) error {
	schemaSQL := `
		CREATE TABLE IF NOT EXISTS recognition_logs (
			id UUID PRIMARY KEY,
			session_id UUID NOT NULL,
			store_id VARCHAR(255),
			action VARCHAR(50) NOT NULL,
			outcome VARCHAR(50) NOT NULL,
			detail TEXT,
			duration_ms BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := db.Exec(ctx, schemaSQL)
	return err
}

func (r *PostgresRecorder) Record(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO recognition_logs (id, session_id, store_id, action, outcome, detail, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		event.ID, event.SessionID, event.StoreID, event.Action,
		event.Outcome, event.Detail, event.Duration.Milliseconds(), event.CreatedAt,
	)
	return err
}

// Close releases the underlying pool.
func (r *PostgresRecorder) Close() {
	r.db.Close()
}
