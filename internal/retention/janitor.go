// Package retention enforces the prediction history retention window. A
// janitor periodically removes predictions older than the TTL, archiving
// them first when an archiver is configured. When the store also keeps
// execution logs, entries older than ExecutionRetention are dropped too.
//
// Archive failures are fail-safe: records are NOT purged if archiving fails.
package retention

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cognifloe/control-plane/internal/store"
	"github.com/cognifloe/control-plane/pkg/models"
)

// DefaultPredictionTTL is the default age after which predictions expire.
const DefaultPredictionTTL = 30 * 24 * time.Hour

// ExecutionRetention covers the longest telemetry window.
const ExecutionRetention = 90 * 24 * time.Hour

// Archiver stores expired predictions before they are purged.
type Archiver interface {
	Kind() string
	ArchivePredictions(ctx context.Context, recs []models.PredictionRecord) (string, error)
}

// CycleStats tracks what happened in a single retention cycle.
type CycleStats struct {
	Expired     int
	Archived    int
	Purged      int
	ArchivePath string
	// ExecutionsPurged counts execution logs dropped this cycle.
	ExecutionsPurged int
	Err              error
}

// Janitor periodically archives and purges expired predictions.
type Janitor struct {
	store    store.PredictionStore
	ttl      time.Duration
	interval time.Duration
	archiver Archiver
	now      func() time.Time
}

// NewJanitor creates a janitor. A non-positive ttl uses DefaultPredictionTTL;
// intervals below one minute are raised to one minute. archiver may be nil.
func NewJanitor(s store.PredictionStore, ttl, interval time.Duration, archiver Archiver) *Janitor {
	if ttl <= 0 {
		ttl = DefaultPredictionTTL
	}
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Janitor{store: s, ttl: ttl, interval: interval, archiver: archiver, now: time.Now}
}

// Start runs cycles until ctx is canceled.
func (j *Janitor) Start(ctx context.Context) {
	kind := "none"
	if j.archiver != nil {
		kind = j.archiver.Kind()
	}
	log.Info().
		Dur("ttl", j.ttl).
		Dur("interval", j.interval).
		Str("archiver", kind).
		Msg("Retention janitor started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.RunCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Retention janitor stopped")
			return
		case <-ticker.C:
			j.RunCycle(ctx)
		}
	}
}

// RunCycle performs one sweep.
func (j *Janitor) RunCycle(ctx context.Context) CycleStats {
	var stats CycleStats
	j.purgeExecutions(ctx, &stats)
	cutoff := j.now().Add(-j.ttl)

	if j.archiver != nil {
		expired, err := j.store.ExpiredPredictions(ctx, cutoff)
		if err != nil {
			stats.Err = err
			log.Warn().Err(err).Msg("Retention janitor: failed to list expired predictions")
			return stats
		}
		stats.Expired = len(expired)
		if len(expired) == 0 {
			return stats
		}

		path, err := j.archiver.ArchivePredictions(ctx, expired)
		if err != nil {
			stats.Err = err
			log.Warn().Err(err).Int("expired", len(expired)).Msg("Archive failed, skipping purge")
			return stats
		}
		stats.Archived = len(expired)
		stats.ArchivePath = path
	}

	n, err := j.store.PurgePredictions(ctx, cutoff)
	if err != nil {
		stats.Err = err
		log.Warn().Err(err).Msg("Retention janitor: purge failed")
		return stats
	}
	stats.Purged = n

	if n > 0 {
		log.Info().
			Int("purged", n).
			Int("archived", stats.Archived).
			Str("archive", stats.ArchivePath).
			Msg("Retention cycle complete")
	}
	return stats
}

func (j *Janitor) purgeExecutions(ctx context.Context, stats *CycleStats) {
	es, ok := j.store.(store.ExecutionStore)
	if !ok {
		return
	}
	n, err := es.PurgeExecutions(ctx, j.now().Add(-ExecutionRetention))
	if err != nil {
		log.Warn().Err(err).Msg("Retention janitor: execution purge failed")
		return
	}
	stats.ExecutionsPurged = n
	if n > 0 {
		log.Info().Int("purged", n).Msg("Execution logs purged")
	}
}
