// Package services – ReviewService
//
// ReviewService loads a student's learning progress and conversations and
// hands them to review.Rank. Results are cached per (user, limit) when a
// cache is configured; writes that change the inputs invalidate it.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/repo"
	"github.com/tbourn/go-tutor-backend/internal/review"
)

// ReviewService ranks topics due for review.
type ReviewService struct {
	DB    *gorm.DB
	Cache ReviewCache

	// DefaultLimit applies when the caller passes a non-positive limit.
	DefaultLimit int
	// MaxLimit caps caller-provided limits.
	MaxLimit int

	Now func() time.Time
}

// Topics returns the ranked review suggestions of userID.
func (s *ReviewService) Topics(ctx context.Context, userID string, limit int) (review.Result, error) {
	limit = s.limit(limit)
	ctx, span := otel.Tracer("services/ReviewService").Start(ctx, "Topics",
		trace.WithAttributes(attribute.String("user.id", userID), attribute.Int("limit", limit)),
	)
	defer span.End()

	lg := zerolog.Ctx(ctx)
	if s.Cache != nil {
		cached, ok, err := s.Cache.Get(ctx, userID, limit)
		switch {
		case err != nil:
			lg.Warn().Err(err).Str("user_id", userID).Msg("review cache read failed")
		case ok:
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return *cached, nil
		}
	}

	var (
		progress []domain.LearningProgress
		convs    []domain.Conversation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		progress, err = repo.ListLearningProgress(gctx, s.DB, userID)
		return err
	})
	g.Go(func() error {
		var err error
		convs, err = repo.ListConversations(gctx, s.DB, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return review.Result{}, err
	}

	res := review.Rank(progress, convs, s.now(), limit)

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, userID, limit, res); err != nil {
			lg.Warn().Err(err).Str("user_id", userID).Msg("review cache write failed")
		}
	}
	span.SetAttributes(attribute.Int("topics.total", res.TotalTopics))
	return res, nil
}

func (s *ReviewService) limit(n int) int {
	if n <= 0 {
		n = s.DefaultLimit
	}
	if n <= 0 {
		n = 10
	}
	if s.MaxLimit > 0 && n > s.MaxLimit {
		n = s.MaxLimit
	}
	return n
}

func (s *ReviewService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
