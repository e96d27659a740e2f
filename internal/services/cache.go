package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-tutor-backend/internal/review"
)

// ReviewCache stores ranked review results per user. *cache.ReviewCache
// implements it; a nil ReviewCache disables caching.
type ReviewCache interface {
	Get(ctx context.Context, userID string, limit int) (*review.Result, bool, error)
	Set(ctx context.Context, userID string, limit int, res review.Result) error
	Invalidate(ctx context.Context, userID string) error
}

// invalidateReview drops cached review results of userID. Failures are
// logged; a stale entry expires on its own.
func invalidateReview(ctx context.Context, c ReviewCache, userID string) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx, userID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("review cache invalidation failed")
	}
}
