package app

import (
	"strings"

	"review_dashboard/internal/domain"
)

// Small valence lexicon. Enough signal for coarse three-way labels on short
// review text; anything it can't decide falls back to the star rating.
var positiveWords = map[string]struct{}{
	"amazing": {}, "awesome": {}, "best": {}, "caring": {}, "clean": {},
	"comfortable": {}, "compassionate": {}, "excellent": {}, "fantastic": {},
	"friendly": {}, "good": {}, "great": {}, "happy": {}, "helpful": {},
	"kind": {}, "love": {}, "loved": {}, "nice": {}, "outstanding": {},
	"perfect": {}, "pleasant": {}, "professional": {}, "recommend": {},
	"recommended": {}, "wonderful": {},
}

var negativeWords = map[string]struct{}{
	"awful": {}, "bad": {}, "dirty": {}, "disappointed": {}, "disappointing": {},
	"disgusting": {}, "horrible": {}, "mediocre": {}, "neglect": {},
	"neglected": {}, "poor": {}, "rude": {}, "sad": {}, "slow": {},
	"terrible": {}, "uncaring": {}, "unhappy": {}, "unprofessional": {},
	"unsafe": {}, "worst": {},
}

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "dont": {}, "don't": {},
	"didnt": {}, "didn't": {}, "wasnt": {}, "wasn't": {}, "isnt": {}, "isn't": {},
}

// ClassifySentiment scores text against the lexicon. Deterministic and
// idempotent: the same text always yields the same label.
func ClassifySentiment(text string) domain.Sentiment {
	score := scoreText(text)
	switch {
	case score > 0:
		return domain.SentimentPositive
	case score < 0:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

// ClassifyReview labels a review, using the rating as a tiebreak when the
// text is empty or lexically neutral.
func ClassifyReview(r domain.Review) domain.Sentiment {
	if score := scoreText(r.Text); score != 0 {
		if score > 0 {
			return domain.SentimentPositive
		}
		return domain.SentimentNegative
	}
	switch {
	case r.Rating >= 4:
		return domain.SentimentPositive
	case r.Rating <= 2:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func scoreText(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	words := tokenize(text)
	score := 0
	for i, w := range words {
		hit := 0
		if _, ok := positiveWords[w]; ok {
			hit = 1
		} else if _, ok := negativeWords[w]; ok {
			hit = -1
		}
		if hit == 0 {
			continue
		}
		// a negator directly before a sentiment word flips it
		if i > 0 {
			if _, ok := negators[words[i-1]]; ok {
				hit = -hit
			}
		}
		score += hit
	}
	return score
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
	})
}
