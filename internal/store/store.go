// Package store persists dataset snapshots between requests and saved
// dashboard configurations.
//
// A snapshot is the column schema and first rows of an uploaded table,
// serialized as JSON and addressed by an opaque handle. Chart requests re-materialize
// the table from it, so a handle that no longer resolves is reported as
// ErrDataExpired and the user is asked to upload again.
//
// Three backends are provided: memory (default, single process), file (one
// JSON document per handle in a directory) and postgres.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/datadash/internal/table"
)

var (
	// ErrDataExpired is returned when a handle does not resolve to a snapshot.
	ErrDataExpired = errors.New("snapshot expired or not found")

	// ErrInvalidName is returned for dashboard names that sanitize to nothing.
	ErrInvalidName = errors.New("invalid dashboard name")

	// ErrDashboardNotFound is returned by DashboardStore.Get for unknown names.
	ErrDashboardNotFound = errors.New("dashboard not found")
)

// SnapshotStore keeps serialized table snapshots keyed by handle.
// Implementations are safe for concurrent use.
type SnapshotStore interface {
	// Save stores snap under a new handle.
	Save(ctx context.Context, snap table.Snapshot) (string, error)
	// Load returns the snapshot saved under handle, or ErrDataExpired.
	Load(ctx context.Context, handle string) (table.Snapshot, error)
	// Purge deletes snapshots created before olderThan and reports how many.
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
}

// DashboardStore keeps named chart configurations. The config is opaque
// JSON produced by the browser.
type DashboardStore interface {
	// Save writes config under name and returns where it was stored.
	Save(ctx context.Context, name string, config json.RawMessage) (string, error)
	// List returns the stored file names ("sales.json"), sorted.
	List(ctx context.Context) ([]string, error)
	// Get returns the config saved under name, with or without ".json".
	Get(ctx context.Context, name string) (json.RawMessage, error)
}

// NewHandle returns a fresh snapshot handle.
func NewHandle() string {
	return uuid.NewString()
}

// ValidHandle reports whether h has the shape NewHandle produces. Stores
// reject anything else before touching disk or the database.
func ValidHandle(h string) bool {
	_, err := uuid.Parse(h)
	return err == nil && !strings.ContainsAny(h, "{}:")
}

// DashboardExt is appended to every stored dashboard name.
const DashboardExt = ".json"

// maxNameLen bounds a sanitized dashboard name, extension excluded.
const maxNameLen = 100

// SanitizeName turns a user-supplied dashboard name into a safe file name
// ending in ".json". Characters other than letters, digits, '-', '_', '.'
// and ' ' become '_'; leading dots are removed.
func SanitizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, DashboardExt)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.', r == ' ':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	clean := strings.TrimLeft(strings.TrimSpace(b.String()), ".")
	if clean == "" || strings.Trim(clean, "_") == "" {
		return "", ErrInvalidName
	}
	if len(clean) > maxNameLen {
		clean = clean[:maxNameLen]
	}
	return clean + DashboardExt, nil
}

func marshalSnapshot(snap table.Snapshot) ([]byte, error) {
	if snap.Columns == nil {
		snap.Columns = []table.ColumnSchema{}
	}
	if snap.Records == nil {
		snap.Records = []table.Record{}
	}
	return json.Marshal(snap)
}

// unmarshalSnapshot also accepts a bare record array, the format written
// before snapshots carried a schema.
func unmarshalSnapshot(data []byte) (table.Snapshot, error) {
	var snap table.Snapshot
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err := json.Unmarshal(trimmed, &snap.Records)
		return snap, err
	}
	err := json.Unmarshal(data, &snap)
	return snap, err
}
