package app

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"review_dashboard/internal/domain"
)

/********** alias registries (single source of truth) **********/

// Vendors disagree on field names; each canonical field maps to the paths
// seen across the Google Places, Yelp Fusion and Facebook Graph payloads.
var reviewAliases = map[string][]string{
	"reviewer":    {"author_name", "user.name", "reviewer.name", "author", "name", "reviewer"},
	"text":        {"text", "review_text", "review", "comment", "content", "body"},
	"rating":      {"rating", "rate", "score", "stars"},
	"external_id": {"id", "review_id", "reviewId", "open_graph_story.id"},
	"date":        {"time", "time_created", "created_time", "review_date", "date", "created_at"},
}

// dateLayouts covers Yelp ("2006-01-02 15:04:05") and Facebook ISO-8601
// with a numeric zone; RFC3339 handles everything else string-shaped.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, key string) string {
	for _, p := range reviewAliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "4,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return &f
			}
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func parseDate(m map[string]any) time.Time {
	for _, p := range reviewAliases["date"] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			// unix seconds (Google's "time")
			if v > 0 {
				return time.Unix(int64(v), 0).UTC()
			}
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			for _, layout := range dateLayouts {
				if t, err := time.Parse(layout, s); err == nil {
					return t.UTC()
				}
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
				return time.Unix(n, 0).UTC()
			}
		}
	}
	return time.Time{}
}

/********** normalizer **********/

// Normalize maps one vendor record into the canonical Review shape. Pure, no
// I/O. Missing reviewer name or text is tolerated; an absent or out-of-range
// rating rejects the record with ErrValidation; ratings are never clamped.
func Normalize(platform domain.Platform, raw map[string]any) (domain.Review, error) {
	if !platform.Valid() {
		return domain.Review{}, fmt.Errorf("%w: unknown platform %q", domain.ErrValidation, platform)
	}

	f := getFloatFlexible(raw, reviewAliases["rating"]...)
	if f == nil {
		return domain.Review{}, fmt.Errorf("%w: rating missing", domain.ErrValidation)
	}
	if *f < 1 || *f > 5 {
		return domain.Review{}, fmt.Errorf("%w: rating %v out of range [1,5]", domain.ErrValidation, *f)
	}

	rv := domain.Review{
		Platform:     platform,
		ReviewerName: firstNonEmptyAlias(raw, "reviewer"),
		Rating:       int(math.Round(*f)),
		Text:         firstNonEmptyAlias(raw, "text"),
		ReviewDate:   parseDate(raw),
	}

	// External id: prefer the vendor's; some (Google public API) don't carry
	// one, so synthesize a stable hash. Only fields that survive a refetch go
	// into the signature: a rating edit must still map to the same row.
	if s := firstNonEmptyAlias(raw, "external_id"); s != "" {
		rv.ExternalID = s
	} else if n := getFloatFlexible(raw, "time"); n != nil {
		rv.ExternalID = strconv.FormatInt(int64(*n), 10)
	} else {
		sig := strings.Join([]string{
			rv.ReviewerName,
			rv.Text,
			rv.ReviewDate.Format(time.RFC3339),
		}, "|")
		sum := sha1.Sum([]byte(sig))
		rv.ExternalID = hex.EncodeToString(sum[:])
	}

	if b, err := json.Marshal(raw); err == nil {
		rv.RawJSON = b
	} else {
		log.Error().Err(err).Str("context", "Normalize").Msg("marshal raw review failed")
	}

	return rv, nil
}
