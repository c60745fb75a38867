package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/datadash/internal/ingest"
	"github.com/JonMunkholm/datadash/internal/logging"
	"github.com/JonMunkholm/datadash/internal/store"
	"github.com/JonMunkholm/datadash/internal/table"
)

// SnapshotRowLimit is how many leading rows of an upload are kept for
// later chart requests.
const SnapshotRowLimit = 1000

// DefaultIngestTimeout bounds decoding and profiling of one upload.
const DefaultIngestTimeout = 10 * time.Minute

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	MaxConcurrentIngests int
	MaxWait              time.Duration
	IngestTimeout        time.Duration
}

// Service connects ingestion, the engine and the stores.
type Service struct {
	snapshots     store.SnapshotStore
	dashboards    store.DashboardStore
	limiter       *IngestLimiter
	ingestTimeout time.Duration
}

// NewService creates a Service over the given stores.
func NewService(snapshots store.SnapshotStore, dashboards store.DashboardStore, opts Options) *Service {
	timeout := opts.IngestTimeout
	if timeout <= 0 {
		timeout = DefaultIngestTimeout
	}
	return &Service{
		snapshots:     snapshots,
		dashboards:    dashboards,
		limiter:       NewIngestLimiter(opts.MaxConcurrentIngests, opts.MaxWait),
		ingestTimeout: timeout,
	}
}

// Limiter exposes the ingest limiter for health checks and shutdown.
func (s *Service) Limiter() *IngestLimiter {
	return s.limiter
}

// IngestResult is what a caller gets back from a successful upload.
type IngestResult struct {
	Handle   string   `json:"handle"`
	Filename string   `json:"filename"`
	Rows     int      `json:"rows"`
	Profile  *Profile `json:"profile"`
}

// Ingest decodes an upload, profiles it and snapshots its first
// SnapshotRowLimit rows under a new handle.
func (s *Service) Ingest(ctx context.Context, filename string, r io.Reader) (*IngestResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.ingestTimeout)
	defer cancel()

	logger := logging.WithFields(ctx, "filename", filename, "format", ingest.DetectFormat(filename))
	start := time.Now()

	t, err := ingest.Decode(ctx, filename, r)
	if err != nil {
		logger.Warn("ingest failed", "error", err)
		return nil, fmt.Errorf("ingest %s: %w", filename, err)
	}

	profile := BuildProfile(t)

	handle, err := s.snapshots.Save(ctx, t.Head(SnapshotRowLimit).Snapshot())
	if err != nil {
		logger.Error("snapshot save failed", "error", err)
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	logger.Info("ingest completed",
		"handle", handle,
		"rows", t.NumRows(),
		"columns", t.NumColumns(),
		"numeric", len(profile.Columns.Numeric),
		"datetime", len(profile.Columns.Datetime),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &IngestResult{
		Handle:   handle,
		Filename: filename,
		Rows:     t.NumRows(),
		Profile:  profile,
	}, nil
}

// Chart answers q against the snapshot behind handle. An unknown or purged
// handle yields store.ErrDataExpired.
func (s *Service) Chart(ctx context.Context, handle string, q ChartQuery) (ChartResult, error) {
	t, err := s.loadTable(ctx, handle)
	if err != nil {
		return ChartResult{}, err
	}
	res := PrepareChart(t, q)

	logging.FromContext(logging.WithHandle(ctx, handle)).Debug("chart prepared",
		"type", q.Type,
		"x", q.X,
		"y", q.Y,
		"agg", q.Agg,
		"points", len(res.Labels),
	)
	return res, nil
}

// Profile rebuilds the profile of a snapshot. It describes the snapshotted
// rows, not the full upload.
func (s *Service) Profile(ctx context.Context, handle string) (*Profile, error) {
	t, err := s.loadTable(ctx, handle)
	if err != nil {
		return nil, err
	}
	return BuildProfile(t), nil
}

func (s *Service) loadTable(ctx context.Context, handle string) (*table.Table, error) {
	snap, err := s.snapshots.Load(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", handle, err)
	}
	logging.FromContext(ctx).Debug("snapshot loaded", "handle", handle, "rows", len(snap.Records))
	return table.FromSnapshot(snap), nil
}

// SaveDashboard stores a chart configuration under name and returns where
// it was written.
func (s *Service) SaveDashboard(ctx context.Context, name string, config []byte) (string, error) {
	if !json.Valid(config) {
		return "", ErrInvalidDashboardConfig
	}
	loc, err := s.dashboards.Save(ctx, name, json.RawMessage(config))
	if err != nil {
		return "", fmt.Errorf("save dashboard %q: %w", name, err)
	}
	logging.FromContext(ctx).Info("dashboard saved", "name", name, "location", loc)
	return loc, nil
}

// ListDashboards returns the stored dashboard file names.
func (s *Service) ListDashboards(ctx context.Context) ([]string, error) {
	names, err := s.dashboards.List(ctx)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Dashboard returns one saved configuration.
func (s *Service) Dashboard(ctx context.Context, name string) (json.RawMessage, error) {
	return s.dashboards.Get(ctx, name)
}

// DashboardYAML returns one saved configuration rendered as YAML.
func (s *Service) DashboardYAML(ctx context.Context, name string) ([]byte, error) {
	cfg, err := s.dashboards.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return store.DashboardYAML(cfg)
}
