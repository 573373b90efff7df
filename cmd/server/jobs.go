// Package main provides the NochGPT server entry point.
package main

import (
	"context"
	"time"

	"github.com/nochlab/nochgpt/internal/cache"
	"github.com/nochlab/nochgpt/internal/logger"
	"github.com/nochlab/nochgpt/internal/metrics"
	"github.com/nochlab/nochgpt/internal/store"
)

const (
	// cacheSweepInterval bounds how long expired answers linger. Lookups
	// already skip expired entries, so this only reclaims memory.
	cacheSweepInterval = 10 * time.Minute

	// storePruneInterval controls how often processed message ids and
	// stale conversation state rows are removed.
	storePruneInterval = time.Hour

	// stateRetention keeps a sender's pinned language for a month of
	// inactivity before the next message re-detects it.
	stateRetention = 30 * 24 * time.Hour
)

// sweepResponseCache periodically evicts expired cache entries.
func sweepResponseCache(ctx context.Context, c *cache.Cache, m *metrics.Metrics, log *logger.Logger) {
	ticker := time.NewTicker(cacheSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := c.SweepExpired()
			m.SetCacheSize(c.Len())
			if removed > 0 {
				log.WithField("removed", removed).Debug("Response cache swept")
			}
		}
	}
}

// pruneStore periodically removes old dedup ids and idle conversation state.
func pruneStore(ctx context.Context, db *store.DB, dedupRetention time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(storePruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneCtx, cancel := context.WithTimeout(ctx, time.Minute)

			if removed, err := db.PruneProcessed(pruneCtx, dedupRetention); err != nil {
				log.WithError(err).Error("Failed to prune processed message ids")
			} else if removed > 0 {
				log.WithField("removed", removed).Debug("Processed message ids pruned")
			}

			if removed, err := db.PruneState(pruneCtx, stateRetention); err != nil {
				log.WithError(err).Error("Failed to prune conversation state")
			} else if removed > 0 {
				log.WithField("removed", removed).Debug("Stale conversation state pruned")
			}

			cancel()
		}
	}
}
