package app_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"review_dashboard/internal/domain"
)

// ---- fakes ----

type memRepo struct {
	mu         sync.Mutex
	seq        int64
	rows       map[string]*domain.Review // keyed platform|external_id
	byID       map[int64]*domain.Review
	watermarks map[domain.Platform]time.Time
	upsertErr  error
}

func newMemRepo() *memRepo {
	return &memRepo{
		rows:       map[string]*domain.Review{},
		byID:       map[int64]*domain.Review{},
		watermarks: map[domain.Platform]time.Time{},
	}
}

func (m *memRepo) Upsert(ctx context.Context, r domain.Review) (domain.Review, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return domain.Review{}, false, m.upsertErr
	}
	key := string(r.Platform) + "|" + r.ExternalID
	if existing, ok := m.rows[key]; ok {
		existing.ReviewerName = r.ReviewerName
		existing.Rating = r.Rating
		existing.Text = r.Text
		existing.Sentiment = r.Sentiment
		if !r.ReviewDate.IsZero() {
			existing.ReviewDate = r.ReviewDate
		}
		existing.RawJSON = r.RawJSON
		return *existing, false, nil
	}
	m.seq++
	r.ID = m.seq
	cp := r
	m.rows[key] = &cp
	m.byID[cp.ID] = &cp
	return cp, true, nil
}

func (m *memRepo) Get(ctx context.Context, id int64) (domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.byID[id]; ok {
		return *r, nil
	}
	return domain.Review{}, domain.ErrNotFound
}

func (m *memRepo) List(ctx context.Context, q domain.ReviewsQuery) ([]domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Review
	for _, r := range m.rows {
		if q.Platform != nil && r.Platform != *q.Platform {
			continue
		}
		if q.MaxRating != nil && r.Rating > *q.MaxRating {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReviewDate.Equal(out[j].ReviewDate) {
			return out[i].ReviewDate.After(out[j].ReviewDate)
		}
		return out[i].ID > out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memRepo) SetResponse(ctx context.Context, id int64, text string) (domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	if r.ResponseText != nil {
		return domain.Review{}, domain.ErrAlreadyResponded
	}
	r.ResponseText = &text
	return *r, nil
}

func (m *memRepo) MarkSynced(ctx context.Context, p domain.Platform, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watermarks[p] = t
	return nil
}

func (m *memRepo) LastSync(ctx context.Context, p domain.Platform) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.watermarks[p]; ok {
		return &t, nil
	}
	return nil, nil
}

func (m *memRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]domain.Review:
		*d = v.([]domain.Review)
	case *domain.Stats:
		*d = v.(domain.Stats)
	case *int64:
		*d = v.(int64)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

type fakeConnector struct {
	platform domain.Platform
	raws     []map[string]any
	err      error

	mu       sync.Mutex
	gotSince *time.Time
	calls    int
	release  chan struct{} // when set, FetchNewReviews blocks until closed
}

func (f *fakeConnector) Platform() domain.Platform { return f.platform }

func (f *fakeConnector) FetchNewReviews(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	f.mu.Lock()
	f.calls++
	f.gotSince = since
	release := f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.raws, nil
}

// ---- helpers ----

func ptr[T any](v T) *T { return &v }
