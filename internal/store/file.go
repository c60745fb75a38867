package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/JonMunkholm/datadash/internal/table"
)

// FileStore keeps one JSON document per snapshot in a directory. The file
// modification time is the snapshot's creation time.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (f *FileStore) Dir() string { return f.dir }

func (f *FileStore) path(handle string) string {
	return filepath.Join(f.dir, handle+".json")
}

func (f *FileStore) Save(ctx context.Context, snap table.Snapshot) (string, error) {
	data, err := marshalSnapshot(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	handle := NewHandle()
	if err := writeFileAtomic(f.path(handle), data); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return handle, nil
}

func (f *FileStore) Load(ctx context.Context, handle string) (table.Snapshot, error) {
	if !ValidHandle(handle) {
		return table.Snapshot{}, ErrDataExpired
	}
	data, err := os.ReadFile(f.path(handle))
	if errors.Is(err, fs.ErrNotExist) {
		return table.Snapshot{}, ErrDataExpired
	}
	if err != nil {
		return table.Snapshot{}, fmt.Errorf("read snapshot %s: %w", handle, err)
	}
	snap, err := unmarshalSnapshot(data)
	if err != nil {
		return table.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", handle, err)
	}
	return snap, nil
}

func (f *FileStore) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return 0, fmt.Errorf("list snapshots: %w", err)
	}

	var n int64
	for _, entry := range entries {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if !ValidHandle(strings.TrimSuffix(name, ".json")) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // removed concurrently
		}
		if !info.ModTime().Before(olderThan) {
			continue
		}
		if err := os.Remove(filepath.Join(f.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return n, fmt.Errorf("remove snapshot %s: %w", name, err)
		}
		n++
	}
	return n, nil
}

// FileDashboards stores each dashboard as <name>.json in a directory.
type FileDashboards struct {
	dir string
}

// NewFileDashboards creates dir if needed and returns a store rooted there.
func NewFileDashboards(dir string) (*FileDashboards, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create dashboard dir: %w", err)
	}
	return &FileDashboards{dir: dir}, nil
}

func (d *FileDashboards) Save(ctx context.Context, name string, config json.RawMessage) (string, error) {
	file, err := SanitizeName(name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(d.dir, file)
	if err := writeFileAtomic(path, config); err != nil {
		return "", fmt.Errorf("write dashboard: %w", err)
	}
	return path, nil
}

func (d *FileDashboards) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("list dashboards: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), DashboardExt) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (d *FileDashboards) Get(ctx context.Context, name string) (json.RawMessage, error) {
	file, err := SanitizeName(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(d.dir, file))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", file, ErrDashboardNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read dashboard %s: %w", file, err)
	}
	return json.RawMessage(data), nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place, so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
