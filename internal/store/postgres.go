package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/datadash/internal/table"
)

// DBTX is the subset of *pgxpool.Pool, *pgx.Conn and pgx.Tx the Postgres
// stores need.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Columns are json rather than jsonb so the stored text, including key
// order, comes back unchanged.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
    handle     uuid PRIMARY KEY,
    records    json NOT NULL,
    created_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS snapshots_created_at_idx ON snapshots (created_at);

CREATE TABLE IF NOT EXISTS dashboards (
    name       text PRIMARY KEY,
    config     json NOT NULL,
    updated_at timestamptz NOT NULL DEFAULT now()
);`

// EnsureSchema creates the snapshot and dashboard tables if they are missing.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PostgresStore keeps snapshots in the snapshots table.
type PostgresStore struct {
	db  DBTX
	now func() time.Time
}

// NewPostgresStore returns a snapshot store backed by db. Call EnsureSchema
// once at startup.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (p *PostgresStore) Save(ctx context.Context, snap table.Snapshot) (string, error) {
	data, err := marshalSnapshot(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	handle := NewHandle()
	createdAt := pgtype.Timestamptz{Time: p.now().UTC(), Valid: true}

	_, err = p.db.Exec(ctx,
		`INSERT INTO snapshots (handle, records, created_at) VALUES ($1::uuid, $2::json, $3)`,
		handle, string(data), createdAt)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	return handle, nil
}

func (p *PostgresStore) Load(ctx context.Context, handle string) (table.Snapshot, error) {
	if !ValidHandle(handle) {
		return table.Snapshot{}, ErrDataExpired
	}

	var data []byte
	err := p.db.QueryRow(ctx,
		`SELECT records::text FROM snapshots WHERE handle = $1::uuid`, handle).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return table.Snapshot{}, ErrDataExpired
	}
	if err != nil {
		return table.Snapshot{}, fmt.Errorf("select snapshot %s: %w", handle, err)
	}

	snap, err := unmarshalSnapshot(data)
	if err != nil {
		return table.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", handle, err)
	}
	return snap, nil
}

func (p *PostgresStore) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := p.db.Exec(ctx,
		`DELETE FROM snapshots WHERE created_at < $1`,
		pgtype.Timestamptz{Time: olderThan.UTC(), Valid: true})
	if err != nil {
		return 0, fmt.Errorf("purge snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PostgresDashboards keeps dashboards in the dashboards table.
type PostgresDashboards struct {
	db DBTX
}

// NewPostgresDashboards returns a dashboard store backed by db.
func NewPostgresDashboards(db DBTX) *PostgresDashboards {
	return &PostgresDashboards{db: db}
}

func (p *PostgresDashboards) Save(ctx context.Context, name string, config json.RawMessage) (string, error) {
	file, err := SanitizeName(name)
	if err != nil {
		return "", err
	}
	_, err = p.db.Exec(ctx, `
INSERT INTO dashboards (name, config, updated_at) VALUES ($1, $2::json, now())
ON CONFLICT (name) DO UPDATE SET config = EXCLUDED.config, updated_at = EXCLUDED.updated_at`,
		file, string(config))
	if err != nil {
		return "", fmt.Errorf("upsert dashboard: %w", err)
	}
	return "postgres://dashboards/" + file, nil
}

func (p *PostgresDashboards) List(ctx context.Context) ([]string, error) {
	rows, err := p.db.Query(ctx, `SELECT name FROM dashboards ORDER BY name COLLATE "C"`)
	if err != nil {
		return nil, fmt.Errorf("list dashboards: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list dashboards: %w", err)
	}
	return names, nil
}

func (p *PostgresDashboards) Get(ctx context.Context, name string) (json.RawMessage, error) {
	file, err := SanitizeName(name)
	if err != nil {
		return nil, err
	}
	var cfg pgtype.Text
	err = p.db.QueryRow(ctx, `SELECT config::text FROM dashboards WHERE name = $1`, file).Scan(&cfg)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", file, ErrDashboardNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select dashboard %s: %w", file, err)
	}
	return json.RawMessage(cfg.String), nil
}
