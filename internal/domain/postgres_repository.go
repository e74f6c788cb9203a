package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"tour-monitor/models"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS price_history (
	id          BIGSERIAL PRIMARY KEY,
	origin      TEXT NOT NULL,
	destination TEXT NOT NULL,
	nights      INTEGER NOT NULL DEFAULT 0,
	price       INTEGER NOT NULL CHECK (price > 0),
	observed_at TIMESTAMPTZ NOT NULL,
	run_id      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_price_history_route
	ON price_history (origin, destination, nights, observed_at DESC);
`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres connects with dsn and checks the connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create db connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the history table and its route index if missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Latest(ctx context.Context, route models.Route) (int, bool, error) {
	query := `
	SELECT price FROM price_history
	WHERE origin = $1 AND destination = $2 AND nights = $3
	ORDER BY observed_at DESC, id DESC
	LIMIT 1
	`

	var price int
	err := r.db.QueryRowContext(ctx, query, route.Origin, route.Destination, route.Nights).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return price, true, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, obs models.PriceObservation) error {
	query := `
	INSERT INTO price_history (origin, destination, nights, price, observed_at, run_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		obs.Route.Origin,
		obs.Route.Destination,
		obs.Route.Nights,
		obs.Price,
		obs.ObservedAt,
		obs.RunID,
	)
	return err
}
