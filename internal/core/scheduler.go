package core

// scheduler.go runs the snapshot janitor.
//
// Snapshots are only useful while a user is looking at the dashboard they
// were created for. The janitor purges those older than the configured TTL
// so the store does not grow without bound; a chart request for a purged
// handle then reports ErrDataExpired.

import (
	"context"
	"log/slog"
	"time"
)

// JanitorConfig controls snapshot expiry.
type JanitorConfig struct {
	TTL           time.Duration // Age after which a snapshot is purged (default: 24h)
	CheckInterval time.Duration // How often to run (default: 1h)
}

const (
	DefaultSnapshotTTL     = 24 * time.Hour
	DefaultJanitorInterval = time.Hour
)

func (c JanitorConfig) withDefaults() JanitorConfig {
	if c.TTL <= 0 {
		c.TTL = DefaultSnapshotTTL
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = DefaultJanitorInterval
	}
	return c
}

// StartSnapshotJanitor purges expired snapshots immediately and then every
// CheckInterval until ctx is cancelled. It blocks; run it in a goroutine.
func (s *Service) StartSnapshotJanitor(ctx context.Context, cfg JanitorConfig) {
	cfg = cfg.withDefaults()
	slog.Info("snapshot janitor started",
		"ttl", cfg.TTL.String(),
		"interval", cfg.CheckInterval.String(),
	)

	s.PurgeExpired(ctx, cfg.TTL)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("snapshot janitor stopped")
			return
		case <-ticker.C:
			s.PurgeExpired(ctx, cfg.TTL)
		}
	}
}

// PurgeExpired runs one purge cycle and returns how many snapshots it
// removed. Failures are logged, not returned.
func (s *Service) PurgeExpired(ctx context.Context, ttl time.Duration) int64 {
	start := time.Now()
	purged, err := s.snapshots.Purge(ctx, start.Add(-ttl))
	if err != nil {
		slog.Error("snapshot purge failed", "error", err)
		return purged
	}
	slog.Info("purged expired snapshots",
		"snapshots_purged", purged,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return purged
}
