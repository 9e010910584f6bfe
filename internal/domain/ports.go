package domain

import (
	"context"
	"time"
)

// ReviewRepository is the persistence port for canonical reviews.
type ReviewRepository interface {
	// Write paths
	Upsert(ctx context.Context, r Review) (Review, bool, error)
	SetResponse(ctx context.Context, id int64, text string) (Review, error)
	MarkSynced(ctx context.Context, p Platform, t time.Time) error

	// Read paths
	Get(ctx context.Context, id int64) (Review, error)
	List(ctx context.Context, q ReviewsQuery) ([]Review, error)
	LastSync(ctx context.Context, p Platform) (*time.Time, error)
}

// Connector fetches raw, unvalidated review records from one platform.
// since is the previous successful sync time; connectors that cannot filter
// server-side may ignore it and rely on upsert idempotence.
type Connector interface {
	Platform() Platform
	FetchNewReviews(ctx context.Context, since *time.Time) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ReviewsQuery filters List. Nil pointers mean "no filter". Limit 0 means
// the repository default; negative means unbounded (the aggregator needs the
// full set). Results are always review_date desc, id desc.
type ReviewsQuery struct {
	Platform  *Platform
	MaxRating *int
	Limit     int
}
