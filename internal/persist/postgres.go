package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Pritam-2002/firness-track/internal/appstate"
	"github.com/Pritam-2002/firness-track/internal/db"

	"github.com/jackc/pgx/v5"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS app_state (
		id         text PRIMARY KEY,
		payload    jsonb NOT NULL,
		updated_at timestamptz NOT NULL DEFAULT now()
	)
`

// PostgresBackend keeps the snapshot as a jsonb row of app_state.
type PostgresBackend struct {
	db  db.Querier
	key string
}

func NewPostgresBackend(q db.Querier, key string) *PostgresBackend {
	return &PostgresBackend{db: q, key: key}
}

// Migrate creates the app_state table if needed.
func (b *PostgresBackend) Migrate(ctx context.Context) error {
	_, err := b.db.Exec(ctx, createTableSQL)
	return err
}

func (b *PostgresBackend) Load(ctx context.Context) (appstate.State, bool, error) {
	var raw []byte
	err := b.db.QueryRow(ctx, `SELECT payload FROM app_state WHERE id=$1`, b.key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return appstate.State{}, false, nil
	}
	if err != nil {
		return appstate.State{}, false, err
	}
	var st appstate.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return appstate.State{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return st, true, nil
}

func (b *PostgresBackend) Save(ctx context.Context, st appstate.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = b.db.Exec(ctx, `
		INSERT INTO app_state (id, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
	`, b.key, raw)
	return err
}
