package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/datadash/internal/table"
)

// MemoryStore keeps snapshots in process memory. Snapshots are stored
// serialized so that a Load goes through the same JSON round trip as the
// other backends.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memorySnapshot
	now   func() time.Time
}

type memorySnapshot struct {
	data      []byte
	createdAt time.Time
}

// NewMemoryStore returns an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memorySnapshot),
		now:   time.Now,
	}
}

func (m *MemoryStore) Save(ctx context.Context, snap table.Snapshot) (string, error) {
	data, err := marshalSnapshot(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	handle := NewHandle()

	m.mu.Lock()
	m.items[handle] = memorySnapshot{data: data, createdAt: m.now()}
	m.mu.Unlock()

	return handle, nil
}

func (m *MemoryStore) Load(ctx context.Context, handle string) (table.Snapshot, error) {
	m.mu.RLock()
	item, ok := m.items[handle]
	m.mu.RUnlock()

	if !ok {
		return table.Snapshot{}, ErrDataExpired
	}
	snap, err := unmarshalSnapshot(item.data)
	if err != nil {
		return table.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", handle, err)
	}
	return snap, nil
}

func (m *MemoryStore) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for handle, snap := range m.items {
		if snap.createdAt.Before(olderThan) {
			delete(m.items, handle)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored snapshots.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// MemoryDashboards keeps dashboards in process memory.
type MemoryDashboards struct {
	mu    sync.RWMutex
	items map[string]json.RawMessage
}

// NewMemoryDashboards returns an empty in-memory dashboard store.
func NewMemoryDashboards() *MemoryDashboards {
	return &MemoryDashboards{items: make(map[string]json.RawMessage)}
}

func (m *MemoryDashboards) Save(ctx context.Context, name string, config json.RawMessage) (string, error) {
	file, err := SanitizeName(name)
	if err != nil {
		return "", err
	}
	cp := make(json.RawMessage, len(config))
	copy(cp, config)

	m.mu.Lock()
	m.items[file] = cp
	m.mu.Unlock()

	return "memory://dashboards/" + file, nil
}

func (m *MemoryDashboards) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	names := make([]string, 0, len(m.items))
	for name := range m.items {
		names = append(names, name)
	}
	m.mu.RUnlock()

	sort.Strings(names)
	return names, nil
}

func (m *MemoryDashboards) Get(ctx context.Context, name string) (json.RawMessage, error) {
	file, err := SanitizeName(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	cfg, ok := m.items[file]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%s: %w", file, ErrDashboardNotFound)
	}
	return cfg, nil
}
