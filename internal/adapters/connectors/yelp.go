package connectors

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"review_dashboard/internal/domain"
)

// Yelp fetches reviews through the Fusion business reviews endpoint.
type Yelp struct {
	c          *client
	base       string
	key        string
	businessID string
}

func NewYelp(base, key, businessID string, timeout time.Duration, rps int) (*Yelp, error) {
	if key == "" {
		return nil, fmt.Errorf("yelp: API key is required")
	}
	if businessID == "" {
		return nil, fmt.Errorf("yelp: business id is required")
	}
	if base == "" {
		base = "https://api.yelp.com/v3"
	}
	return &Yelp{c: newClient(timeout, rps), base: base, key: key, businessID: businessID}, nil
}

func (y *Yelp) Platform() domain.Platform { return domain.PlatformYelp }

// FetchNewReviews ignores since: Fusion serves a fixed window of recent
// reviews sorted by date and has no date filter.
func (y *Yelp) FetchNewReviews(ctx context.Context, since *time.Time) ([]map[string]any, error) {
	u := fmt.Sprintf("%s/businesses/%s/reviews?sort_by=newest", y.base, url.PathEscape(y.businessID))

	h := http.Header{}
	h.Set("Authorization", "Bearer "+y.key)

	var body map[string]any
	if err := y.c.getJSON(ctx, u, h, &body); err != nil {
		return nil, err
	}
	return asMaps(body["reviews"]), nil
}
