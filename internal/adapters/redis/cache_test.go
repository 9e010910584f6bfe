package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "review_dashboard/internal/adapters/redis"
	"review_dashboard/internal/domain"
)

func TestCache_RoundTripAndDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	st := domain.Stats{TotalReviews: 3, AverageRating: 4.0}
	if err := cache.Set(ctx, "reviews:stats", st, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got domain.Stats
	ok, err := cache.Get(ctx, "reviews:stats", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || got.TotalReviews != 3 || got.AverageRating != 4.0 {
		t.Fatalf("unexpected cached value: ok=%v %+v", ok, got)
	}

	if err := cache.Del(ctx, "reviews:stats"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	ok, err = cache.Get(ctx, "reviews:stats", &got)
	if err != nil {
		t.Fatalf("Get after Del: %v", err)
	}
	if ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestCache_PingAndNoExpiryValue(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	if err := cache.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	// ttlSec <= 0 stores without expiry (the generation counter relies on it)
	if err := cache.Set(ctx, "reviews:ver", int64(3), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var ver int64
	ok, err := cache.Get(ctx, "reviews:ver", &ver)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || ver != 3 {
		t.Fatalf("unexpected counter: ok=%v ver=%d", ok, ver)
	}
	if mr.TTL("reviews:ver") != 0 {
		t.Fatalf("expected no expiry, got %v", mr.TTL("reviews:ver"))
	}
}

func TestCache_MissReturnsFalseNoError(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)

	var dst []domain.Review
	ok, err := cache.Get(context.Background(), "reviews:0:all:0:50", &dst)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("expected miss on empty cache")
	}
}
