package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const summaryTTL = 10 * time.Minute

// Service serves dashboard summaries through a redis cache. Concurrent cache
// misses for the same tenant collapse into one database query.
type Service struct {
	repo   RepositoryPort
	cache  *redis.Client
	group  singleflight.Group
	logger *slog.Logger
}

// NewService builds Service. cache may be nil, in which case every call
// computes fresh aggregates.
func NewService(repo RepositoryPort, cache *redis.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

func summaryKey(ownerID int64) string {
	return fmt.Sprintf("dashboard:summary:%d", ownerID)
}

// Summary returns the tenant's aggregates, cached for a short window. Stale
// reads are bounded by the TTL and by invalidation on every product mutation.
func (s *Service) Summary(ctx context.Context, ownerID int64) (Summary, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, summaryKey(ownerID)).Bytes()
		if err == nil {
			var cached Summary
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("read summary cache", slog.Any("error", err))
		}
	}

	v, err, _ := s.group.Do(summaryKey(ownerID), func() (any, error) {
		// Collapsed callers share this result, so the computation must not
		// die with whichever request happened to start it.
		computeCtx := context.WithoutCancel(ctx)
		summary, err := s.repo.ComputeSummary(computeCtx, ownerID)
		if err != nil {
			return Summary{}, err
		}
		s.store(computeCtx, ownerID, summary)
		return summary, nil
	})
	if err != nil {
		return Summary{}, err
	}
	return v.(Summary), nil
}

// StockAlerts returns the low-stock list shown beneath the summary cards.
func (s *Service) StockAlerts(ctx context.Context, ownerID int64, limit int) ([]StockAlert, error) {
	return s.repo.ListStockAlerts(ctx, ownerID, limit)
}

// Invalidate drops the tenant's cached summary after a product mutation.
func (s *Service) Invalidate(ctx context.Context, ownerID int64) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, summaryKey(ownerID)).Err()
}

// Warmup recomputes and caches summaries for every active tenant. Used by the
// background worker so first paints after the TTL stay fast.
func (s *Service) Warmup(ctx context.Context) error {
	ids, err := s.repo.ActiveOwnerIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		summary, err := s.repo.ComputeSummary(ctx, id)
		if err != nil {
			s.logger.Warn("warm summary", slog.Int64("owner", id), slog.Any("error", err))
			continue
		}
		s.store(ctx, id, summary)
	}
	return nil
}

func (s *Service) store(ctx context.Context, ownerID int64, summary Summary) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, summaryKey(ownerID), raw, summaryTTL).Err(); err != nil {
		s.logger.Warn("write summary cache", slog.Any("error", err))
	}
}
