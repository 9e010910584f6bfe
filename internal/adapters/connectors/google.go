package connectors

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"review_dashboard/internal/domain"
)

// Google fetches reviews through the Places Details endpoint. The public API
// returns at most the five most recent reviews and cannot filter by date, so
// since is ignored; upsert idempotence absorbs refetches.
type Google struct {
	c       *client
	base    string
	key     string
	placeID string
}

func NewGoogle(base, key, placeID string, timeout time.Duration, rps int) (*Google, error) {
	if key == "" {
		return nil, fmt.Errorf("google: API key is required")
	}
	if placeID == "" {
		return nil, fmt.Errorf("google: place id is required")
	}
	if base == "" {
		base = "https://maps.googleapis.com/maps/api/place"
	}
	return &Google{c: newClient(timeout, rps), base: base, key: key, placeID: placeID}, nil
}

func (g *Google) Platform() domain.Platform { return domain.PlatformGoogle }

func (g *Google) FetchNewReviews(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	u := fmt.Sprintf("%s/details/json?place_id=%s&fields=reviews&key=%s",
		g.base, url.QueryEscape(g.placeID), url.QueryEscape(g.key))

	var body map[string]any
	if err := g.c.getJSON(ctx, u, nil, &body); err != nil {
		return nil, err
	}
	result, _ := body["result"].(map[string]any)
	if result == nil {
		return nil, nil
	}
	return asMaps(result["reviews"]), nil
}
