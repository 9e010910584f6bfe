package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"review_dashboard/internal/app"
	"review_dashboard/internal/domain"
)

func TestSync_StoresClassifiesAndFlags(t *testing.T) {
	repo := newMemRepo()
	google := &fakeConnector{
		platform: domain.PlatformGoogle,
		raws: []map[string]any{
			{"id": "g1", "author_name": "Ana", "rating": 1.0, "text": "bad", "time": 1700000000.0},
		},
	}
	s := app.NewSyncService([]domain.Connector{google}, repo, &fakeCache{}, app.DefaultAlertPolicy(), 2)

	report, err := s.Sync(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if report.State != domain.SyncDone {
		t.Fatalf("expected done, got %s", report.State)
	}
	if len(report.Results) != 1 || report.Results[0].New != 1 {
		t.Fatalf("unexpected results: %+v", report.Results)
	}

	rs, _ := repo.List(context.Background(), domain.ReviewsQuery{})
	if len(rs) != 1 {
		t.Fatalf("expected 1 stored review, got %d", len(rs))
	}
	rv := rs[0]
	if rv.Sentiment == nil || *rv.Sentiment != domain.SentimentNegative {
		t.Fatalf("expected negative sentiment, got %v", rv.Sentiment)
	}
	if !app.DefaultAlertPolicy().NeedsAlert(rv) {
		t.Fatalf("expected 1-star review to need an alert")
	}
}

func TestSync_ResyncUpdatesWithoutDuplicate(t *testing.T) {
	repo := newMemRepo()
	google := &fakeConnector{
		platform: domain.PlatformGoogle,
		raws: []map[string]any{
			{"id": "g1", "rating": 1.0, "text": "bad"},
		},
	}
	s := app.NewSyncService([]domain.Connector{google}, repo, &fakeCache{}, app.DefaultAlertPolicy(), 2)

	report, err := s.Sync(context.Background())
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if report.Results[0].New != 1 || report.Results[0].Updated != 0 {
		t.Fatalf("first sync results: %+v", report.Results[0])
	}

	// same external record reappears with a changed rating
	google.raws = []map[string]any{{"id": "g1", "rating": 5.0, "text": "much better now, great"}}
	report, err = s.Sync(context.Background())
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if report.Results[0].New != 0 || report.Results[0].Updated != 1 {
		t.Fatalf("second sync results: %+v", report.Results[0])
	}

	if repo.count() != 1 {
		t.Fatalf("expected 1 row after re-sync, got %d", repo.count())
	}
	rs, _ := repo.List(context.Background(), domain.ReviewsQuery{})
	if rs[0].Rating != 5 {
		t.Fatalf("expected rating updated to 5, got %d", rs[0].Rating)
	}
}

func TestSync_RatingChangeWithoutVendorIDUpdatesInPlace(t *testing.T) {
	repo := newMemRepo()
	google := &fakeConnector{
		platform: domain.PlatformGoogle,
		raws: []map[string]any{
			{"author_name": "Dee", "rating": 2.0, "text": "fine"},
		},
	}
	s := app.NewSyncService([]domain.Connector{google}, repo, &fakeCache{}, app.DefaultAlertPolicy(), 2)

	if _, err := s.Sync(context.Background()); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	// the vendor carries no review id; a rating edit on the same record must
	// still resolve to the synthesized identity, not insert a second row
	google.raws = []map[string]any{{"author_name": "Dee", "rating": 5.0, "text": "fine"}}
	report, err := s.Sync(context.Background())
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if report.Results[0].New != 0 || report.Results[0].Updated != 1 {
		t.Fatalf("second sync results: %+v", report.Results[0])
	}
	if repo.count() != 1 {
		t.Fatalf("rating change created a second row: %d rows", repo.count())
	}
	rs, _ := repo.List(context.Background(), domain.ReviewsQuery{})
	if rs[0].Rating != 5 {
		t.Fatalf("expected rating updated to 5, got %d", rs[0].Rating)
	}
}

func TestSync_InvalidatesFilteredListCaches(t *testing.T) {
	repo := newMemRepo()
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, app.DefaultAlertPolicy(), 10*time.Minute)

	// warm a filtered variant and a non-default limit while the store is empty
	plat := domain.PlatformGoogle
	if _, err := q.ListReviews(context.Background(), domain.ReviewsQuery{Platform: &plat, Limit: 20}); err != nil {
		t.Fatalf("warm: %v", err)
	}

	google := &fakeConnector{
		platform: domain.PlatformGoogle,
		raws:     []map[string]any{{"id": "g1", "rating": 4.0, "text": "good"}},
	}
	s := app.NewSyncService([]domain.Connector{google}, repo, cache, app.DefaultAlertPolicy(), 2)
	if _, err := s.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	rs, err := q.ListReviews(context.Background(), domain.ReviewsQuery{Platform: &plat, Limit: 20})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rs) != 1 {
		t.Fatalf("filtered list still serves the pre-sync snapshot: %+v", rs)
	}
}

func TestSync_ConnectorFailureIsIsolated(t *testing.T) {
	repo := newMemRepo()
	google := &fakeConnector{platform: domain.PlatformGoogle, err: errors.New("rate limited")}
	yelp := &fakeConnector{
		platform: domain.PlatformYelp,
		raws:     []map[string]any{{"id": "y1", "rating": 4.0, "text": "good"}},
	}
	s := app.NewSyncService([]domain.Connector{google, yelp}, repo, &fakeCache{}, app.DefaultAlertPolicy(), 2)

	report, err := s.Sync(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if report.State != domain.SyncPartialFailure {
		t.Fatalf("expected partial_failure, got %s", report.State)
	}
	if repo.count() != 1 {
		t.Fatalf("expected yelp review stored despite google failure, got %d rows", repo.count())
	}

	// results are sorted by platform; facebook < google < yelp
	var googleRes, yelpRes domain.PlatformSyncResult
	for _, r := range report.Results {
		switch r.Platform {
		case domain.PlatformGoogle:
			googleRes = r
		case domain.PlatformYelp:
			yelpRes = r
		}
	}
	if googleRes.Error == "" {
		t.Fatalf("expected google error surfaced in report")
	}
	if yelpRes.New != 1 || yelpRes.Error != "" {
		t.Fatalf("unexpected yelp result: %+v", yelpRes)
	}
}

func TestSync_InvalidRatingRejectedNotFatal(t *testing.T) {
	repo := newMemRepo()
	google := &fakeConnector{
		platform: domain.PlatformGoogle,
		raws: []map[string]any{
			{"id": "g1", "rating": 9.0, "text": "broken record"},
			{"id": "g2", "rating": 4.0, "text": "fine"},
		},
	}
	s := app.NewSyncService([]domain.Connector{google}, repo, &fakeCache{}, app.DefaultAlertPolicy(), 2)

	report, err := s.Sync(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	res := report.Results[0]
	if res.Rejected != 1 || res.New != 1 || res.Error != "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if report.State != domain.SyncDone {
		t.Fatalf("validation rejects should not fail the run: %s", report.State)
	}
}

func TestSync_RejectsConcurrentRuns(t *testing.T) {
	repo := newMemRepo()
	release := make(chan struct{})
	slow := &fakeConnector{platform: domain.PlatformGoogle, release: release}
	s := app.NewSyncService([]domain.Connector{slow}, repo, &fakeCache{}, app.DefaultAlertPolicy(), 2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Sync(context.Background())
	}()

	// wait for the first run to be inside the connector
	deadline := time.After(2 * time.Second)
	for {
		slow.mu.Lock()
		started := slow.calls > 0
		slow.mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first sync never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if s.State() != domain.SyncRunning {
		t.Fatalf("expected syncing state, got %s", s.State())
	}
	if _, err := s.Sync(context.Background()); !errors.Is(err, domain.ErrSyncInProgress) {
		t.Fatalf("expected ErrSyncInProgress, got %v", err)
	}

	close(release)
	<-done
	if s.State() != domain.SyncIdle {
		t.Fatalf("expected idle after completion, got %s", s.State())
	}
}

func TestSync_CancelDrainsInFlightPlatforms(t *testing.T) {
	repo := newMemRepo()
	release := make(chan struct{})
	slow := &fakeConnector{platform: domain.PlatformGoogle, release: release}
	fast := &fakeConnector{platform: domain.PlatformYelp}
	// one worker: the slow platform holds the only slot while the second
	// acquire waits on the context
	s := app.NewSyncService([]domain.Connector{slow, fast}, repo, &fakeCache{}, app.DefaultAlertPolicy(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := s.Sync(ctx)
		errCh <- err
	}()

	deadline := time.After(2 * time.Second)
	for {
		slow.mu.Lock()
		started := slow.calls > 0
		slow.mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatal("sync never reached the slow platform")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	// the run must not return while the slow platform is still in flight
	select {
	case err := <-errCh:
		t.Fatalf("sync returned with a platform still running: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	if err := <-errCh; err == nil {
		t.Fatal("expected an error after cancellation")
	}
	if s.State() != domain.SyncIdle {
		t.Fatalf("expected idle after drain, got %s", s.State())
	}
}

func TestSync_PassesWatermarkOnSecondRun(t *testing.T) {
	repo := newMemRepo()
	fb := &fakeConnector{platform: domain.PlatformFacebook}
	s := app.NewSyncService([]domain.Connector{fb}, repo, &fakeCache{}, app.DefaultAlertPolicy(), 2)

	if _, err := s.Sync(context.Background()); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	fb.mu.Lock()
	firstSince := fb.gotSince
	fb.mu.Unlock()
	if firstSince != nil {
		t.Fatalf("first run should have no watermark, got %v", firstSince)
	}

	if _, err := s.Sync(context.Background()); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	fb.mu.Lock()
	secondSince := fb.gotSince
	fb.mu.Unlock()
	if secondSince == nil {
		t.Fatalf("second run should receive the first run's watermark")
	}
}
