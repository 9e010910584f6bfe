package app

import (
	"context"
	"fmt"
	"time"

	"review_dashboard/internal/domain"
)

// Every list/stats key carries a generation number. Writes bump the number,
// which orphans all older keys at once regardless of which filter or limit
// produced them; orphans age out via their TTL.
const cacheVersionKey = "reviews:ver"

func cacheVersion(ctx context.Context, cache domain.Cache) int64 {
	var v int64
	if ok, _ := cache.Get(ctx, cacheVersionKey, &v); ok {
		return v
	}
	return 0
}

func statsCacheKey(ver int64) string {
	return fmt.Sprintf("reviews:%d:stats", ver)
}

func listCacheKey(ver int64, q domain.ReviewsQuery) string {
	plat := "all"
	if q.Platform != nil {
		plat = string(*q.Platform)
	}
	maxRating := 0
	if q.MaxRating != nil {
		maxRating = *q.MaxRating
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	return fmt.Sprintf("reviews:%d:%s:%d:%d", ver, plat, maxRating, limit)
}

// QueryService serves the read paths with cache-aside semantics.
type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	policy   AlertPolicy
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, policy AlertPolicy, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, policy: policy, cacheTTL: ttl}
}

func (s *QueryService) ListReviews(ctx context.Context, q domain.ReviewsQuery) ([]domain.Review, error) {
	key := listCacheKey(cacheVersion(ctx, s.cache), q)
	var cached []domain.Review
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	rs, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	// copy before caching so callers can't mutate the cached value
	cp := make([]domain.Review, len(rs))
	copy(cp, rs)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

// Stats recomputes from the full review set on every cache miss; there is no
// incremental maintenance.
func (s *QueryService) Stats(ctx context.Context) (domain.Stats, error) {
	key := statsCacheKey(cacheVersion(ctx, s.cache))
	var st domain.Stats
	if ok, _ := s.cache.Get(ctx, key, &st); ok {
		return st, nil
	}

	rs, err := s.repo.List(ctx, domain.ReviewsQuery{Limit: -1})
	if err != nil {
		return domain.Stats{}, err
	}
	st = ComputeStats(rs, s.policy)
	_ = s.cache.Set(ctx, key, st, int(s.cacheTTL.Seconds()))
	return st, nil
}

func (s *QueryService) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	return s.repo.Get(ctx, id)
}

// NeedsAttention exposes the display-cue predicate to the HTTP layer.
func (s *QueryService) NeedsAttention(r domain.Review) bool {
	return s.policy.NeedsAttention(r)
}
