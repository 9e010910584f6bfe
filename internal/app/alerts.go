package app

import "review_dashboard/internal/domain"

// AlertPolicy carries the two low-rating thresholds: AlertRatingMax drives
// alerting, AttentionRatingMax only the "needs attention" display cue.
type AlertPolicy struct {
	AlertRatingMax     int
	AttentionRatingMax int
}

func DefaultAlertPolicy() AlertPolicy {
	return AlertPolicy{AlertRatingMax: 2, AttentionRatingMax: 3}
}

// NeedsAlert flags reviews that warrant management attention. Pure predicate;
// the API layer consumes it for counts, the sync loop for metrics.
func (p AlertPolicy) NeedsAlert(r domain.Review) bool {
	return r.Rating <= p.AlertRatingMax
}

func (p AlertPolicy) NeedsAttention(r domain.Review) bool {
	return r.Rating <= p.AttentionRatingMax
}
