package app

import (
	"context"
	"fmt"
	"strings"

	"review_dashboard/internal/domain"
)

// ResponseService handles manual response tracking. A response is write-once:
// the repository rejects a second write for the same review.
type ResponseService struct {
	repo  domain.ReviewRepository
	cache domain.Cache
}

func NewResponseService(r domain.ReviewRepository, c domain.Cache) *ResponseService {
	return &ResponseService{repo: r, cache: c}
}

func (s *ResponseService) PostResponse(ctx context.Context, id int64, text string) (domain.Review, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Review{}, fmt.Errorf("%w: response_text is required", domain.ErrValidation)
	}
	rv, err := s.repo.SetResponse(ctx, id, text)
	if err != nil {
		return domain.Review{}, err
	}
	if s.cache != nil {
		invalidateReviewCaches(ctx, s.cache)
	}
	return rv, nil
}
