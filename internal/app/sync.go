package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_dashboard/internal/adapters/observability"
	"review_dashboard/internal/domain"
)

// SyncService runs the fetch/normalize/classify/upsert pipeline across all
// configured platforms. One sync at a time: a trigger while a run is active
// is rejected with ErrSyncInProgress. A single connector failing is isolated
// into its report entry; the remaining platforms still complete.
type SyncService struct {
	connectors []domain.Connector
	repo       domain.ReviewRepository
	cache      domain.Cache
	policy     AlertPolicy
	workers    int64

	running atomic.Bool
}

func NewSyncService(cs []domain.Connector, repo domain.ReviewRepository, cache domain.Cache, policy AlertPolicy, workers int) *SyncService {
	if workers <= 0 {
		workers = 3
	}
	return &SyncService{connectors: cs, repo: repo, cache: cache, policy: policy, workers: int64(workers)}
}

// State reports idle or syncing; done/partial_failure live on the report.
func (s *SyncService) State() domain.SyncState {
	if s.running.Load() {
		return domain.SyncRunning
	}
	return domain.SyncIdle
}

func (s *SyncService) Sync(ctx context.Context) (domain.SyncReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return domain.SyncReport{}, domain.ErrSyncInProgress
	}
	defer s.running.Store(false)

	started := time.Now().UTC()
	report := domain.SyncReport{State: domain.SyncDone, StartedAt: started}

	// Fetches are independent and read-only against the vendors, so they fan
	// out; writes are serialized per record by the store's atomic upsert.
	sem := semaphore.NewWeighted(s.workers)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, c := range s.connectors {
		if err := sem.Acquire(ctx, 1); err != nil {
			// in-flight platforms must drain before the guard releases,
			// or a new sync could overlap with their writes
			wg.Wait()
			return domain.SyncReport{}, err
		}
		wg.Add(1)
		go func(c domain.Connector) {
			defer wg.Done()
			defer sem.Release(1)

			res := s.syncPlatform(ctx, c, started)
			mu.Lock()
			report.Results = append(report.Results, res)
			if res.Error != "" {
				report.State = domain.SyncPartialFailure
			}
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].Platform < report.Results[j].Platform
	})

	// Any committed upsert may have changed what list/stats return.
	if s.cache != nil {
		invalidateReviewCaches(ctx, s.cache)
	}

	observability.ObserveSyncRun(string(report.State), time.Since(started))
	log.Info().
		Str("state", string(report.State)).
		Int("platforms", len(report.Results)).
		Dur("duration", time.Since(started)).
		Msg("sync completed")
	return report, nil
}

func (s *SyncService) syncPlatform(ctx context.Context, c domain.Connector, started time.Time) domain.PlatformSyncResult {
	platform := c.Platform()
	res := domain.PlatformSyncResult{Platform: platform}

	since, err := s.repo.LastSync(ctx, platform)
	if err != nil {
		// watermark is an optimization; a full refetch is safe
		log.Warn().Err(err).Str("platform", string(platform)).Msg("last sync lookup failed")
	}

	raw, err := c.FetchNewReviews(ctx, since)
	if err != nil {
		cerr := &domain.ConnectorError{Platform: platform, Err: err}
		res.Error = cerr.Error()
		observability.ObserveSyncReviews(string(platform), "failed", 1)
		log.Warn().Err(cerr).Str("platform", string(platform)).Msg("fetch failed")
		return res
	}

	for _, rec := range raw {
		rv, err := Normalize(platform, rec)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				res.Rejected++
				observability.ObserveSyncReviews(string(platform), "rejected", 1)
				log.Warn().Err(err).Str("platform", string(platform)).Msg("record rejected")
				continue
			}
			res.Error = err.Error()
			return res
		}

		label := ClassifyReview(rv)
		rv.Sentiment = &label

		stored, wasNew, err := s.repo.Upsert(ctx, rv)
		if err != nil {
			// store errors are fatal for this platform's run; committed
			// upserts stay valid since upsert is idempotent per record
			res.Error = fmt.Sprintf("upsert %s/%s: %v", platform, rv.ExternalID, err)
			return res
		}
		if wasNew {
			res.New++
			observability.ObserveSyncReviews(string(platform), "new", 1)
		} else {
			res.Updated++
			observability.ObserveSyncReviews(string(platform), "updated", 1)
		}

		if s.policy.NeedsAlert(stored) {
			observability.ObserveAlert(string(platform))
			log.Info().
				Str("platform", string(platform)).
				Str("external_id", stored.ExternalID).
				Int("rating", stored.Rating).
				Msg("review flagged for alert")
		}
	}

	if err := s.repo.MarkSynced(ctx, platform, started); err != nil {
		log.Warn().Err(err).Str("platform", string(platform)).Msg("mark synced failed")
	}

	log.Info().
		Str("platform", string(platform)).
		Int("new", res.New).
		Int("updated", res.Updated).
		Int("rejected", res.Rejected).
		Msg("platform sync ok")
	return res
}

// invalidateReviewCaches bumps the cache generation, orphaning every cached
// list variant and the stats snapshot in one write. The bump is a plain
// read-increment-set; a lost increment still changes the number, which is all
// invalidation needs.
func invalidateReviewCaches(ctx context.Context, cache domain.Cache) {
	next := cacheVersion(ctx, cache) + 1
	_ = cache.Set(ctx, cacheVersionKey, next, 0)
}
