package storage

import (
	"context"
	"time"

	"tajeer-server/internal/model"
	"tajeer-server/prometheus"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// StagedSource lists staged attachment rows for the sweep
type StagedSource interface {
	StagedOlderThan(ctx context.Context, cutoff time.Time) ([]model.Attachment, error)
	StagedKeys(ctx context.Context) (map[string]struct{}, error)
	DeleteRow(ctx context.Context, id uint) error
}

// Sweeper garbage-collects staged uploads whose wizard session never
// promoted them. Cancel abandons staged objects; the sweep is what
// reclaims them after the TTL.
type Sweeper struct {
	store ObjectStore
	rows  StagedSource
	ttl   time.Duration
	log   *zap.Logger
}

// NewSweeper constructs a staging sweeper
func NewSweeper(store ObjectStore, rows StagedSource, ttl time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{store: store, rows: rows, ttl: ttl, log: log}
}

// Run starts the sweep loop; it returns when ctx is cancelled
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce reclaims expired staged rows and orphaned staging objects.
// Storage deletes are retried with backoff; a row is only removed after
// its object is gone so a failed delete is retried on the next sweep.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	cutoff := time.Now().Add(-s.ttl)

	expired, err := s.rows.StagedOlderThan(ctx, cutoff)
	if err != nil {
		s.log.Error("Staging sweep failed to list expired rows", zap.Error(err))
		return
	}

	removed := 0
	for _, attachment := range expired {
		if err := s.deleteObject(ctx, attachment.StorageKey); err != nil {
			s.log.Warn("Staging sweep could not delete object",
				zap.String("key", attachment.StorageKey),
				zap.Error(err))
			continue
		}
		if err := s.rows.DeleteRow(ctx, attachment.ID); err != nil {
			s.log.Warn("Staging sweep could not delete row",
				zap.Uint("attachment_id", attachment.ID),
				zap.Error(err))
			continue
		}
		removed++
	}

	orphans := s.sweepOrphans(ctx, cutoff)

	prometheus.StagingSweepsCounter.Inc()
	s.log.Info("Staging sweep completed",
		zap.Int("expired_rows", len(expired)),
		zap.Int("removed", removed),
		zap.Int("orphan_objects", orphans))
}

// sweepOrphans removes staging objects older than the cutoff that no
// staged row references, covering uploads whose row insert failed
func (s *Sweeper) sweepOrphans(ctx context.Context, cutoff time.Time) int {
	objects, err := s.store.ListPrefix(ctx, StagingPrefix)
	if err != nil {
		s.log.Warn("Staging sweep could not list staging prefix", zap.Error(err))
		return 0
	}

	live, err := s.rows.StagedKeys(ctx)
	if err != nil {
		s.log.Warn("Staging sweep could not list staged keys", zap.Error(err))
		return 0
	}

	removed := 0
	for _, obj := range objects {
		if obj.LastModified.After(cutoff) {
			continue
		}
		if _, ok := live[obj.Key]; ok {
			continue
		}
		if err := s.deleteObject(ctx, obj.Key); err != nil {
			s.log.Warn("Staging sweep could not delete orphan object",
				zap.String("key", obj.Key),
				zap.Error(err))
			continue
		}
		removed++
	}
	return removed
}

func (s *Sweeper) deleteObject(ctx context.Context, key string) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, key); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
