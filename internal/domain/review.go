package domain

import "time"

// Platform is an external review source.
type Platform string

const (
	PlatformGoogle   Platform = "google"
	PlatformYelp     Platform = "yelp"
	PlatformFacebook Platform = "facebook"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformGoogle, PlatformYelp, PlatformFacebook:
		return true
	}
	return false
}

// Sentiment is a coarse label derived from review text.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Review is the canonical review entity. (Platform, ExternalID) is unique;
// sync upserts on that key and never touches ResponseText.
type Review struct {
	ID           int64      `json:"id"`
	Platform     Platform   `json:"platform"`
	ExternalID   string     `json:"external_id"`
	ReviewerName string     `json:"reviewer_name"`
	Rating       int        `json:"rating"` // 1..5, validated at normalization
	Text         string     `json:"review_text"`
	ReviewDate   time.Time  `json:"review_date"`
	Sentiment    *Sentiment `json:"sentiment"` // nil until classified
	ResponseText *string    `json:"response_text"`
	RawJSON      []byte     `json:"-"` // vendor payload as received
}

// SentimentSummary buckets always sum to the total review count; reviews
// without a computed sentiment land in Unclassified.
type SentimentSummary struct {
	Positive     int `json:"positive"`
	Neutral      int `json:"neutral"`
	Negative     int `json:"negative"`
	Unclassified int `json:"unclassified"`
}

// Stats is recomputed from the full review set on each request.
type Stats struct {
	TotalReviews     int              `json:"total_reviews"`
	AverageRating    float64          `json:"average_rating"` // one decimal, 0 when empty
	SentimentSummary SentimentSummary `json:"sentiment_summary"`
	Alerts           int              `json:"alerts"`
	NeedsAttention   int              `json:"needs_attention"`
}

// SyncState describes the orchestrator's lifecycle.
type SyncState string

const (
	SyncIdle           SyncState = "idle"
	SyncRunning        SyncState = "syncing"
	SyncDone           SyncState = "done"
	SyncPartialFailure SyncState = "partial_failure"
)

// PlatformSyncResult is one platform's contribution to a sync run.
type PlatformSyncResult struct {
	Platform Platform `json:"platform"`
	New      int      `json:"new_reviews"`
	Updated  int      `json:"updated_reviews"`
	Rejected int      `json:"rejected_records"` // failed rating validation
	Error    string   `json:"error,omitempty"`
}

// SyncReport summarizes one sync run across all platforms.
type SyncReport struct {
	State     SyncState            `json:"state"` // done or partial_failure
	StartedAt time.Time            `json:"started_at"`
	Results   []PlatformSyncResult `json:"results"`
}
