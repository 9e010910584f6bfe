package app

import (
	"math"

	"review_dashboard/internal/domain"
)

// ComputeStats aggregates the current review set. Pure function, recomputed
// per request; no incremental state. Average rating is rounded to one
// decimal and reported as 0 for an empty set. Sentiment buckets plus the
// unclassified bucket always sum to TotalReviews.
func ComputeStats(reviews []domain.Review, policy AlertPolicy) domain.Stats {
	st := domain.Stats{TotalReviews: len(reviews)}
	if len(reviews) == 0 {
		return st
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
		switch {
		case r.Sentiment == nil:
			st.SentimentSummary.Unclassified++
		case *r.Sentiment == domain.SentimentPositive:
			st.SentimentSummary.Positive++
		case *r.Sentiment == domain.SentimentNegative:
			st.SentimentSummary.Negative++
		default:
			st.SentimentSummary.Neutral++
		}
		if policy.NeedsAlert(r) {
			st.Alerts++
		}
		if policy.NeedsAttention(r) {
			st.NeedsAttention++
		}
	}
	st.AverageRating = math.Round(float64(sum)/float64(len(reviews))*10) / 10
	return st
}
