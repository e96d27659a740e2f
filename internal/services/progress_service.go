// Package services – ProgressService
//
// ProgressService records practice answers. Counters and mastery change in
// one atomic upsert; the next review date follows from the new mastery.
package services

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/repo"
	"github.com/tbourn/go-tutor-backend/internal/review"
)

// Mastery steps applied per answer.
const (
	masteryGain = 10
	masteryLoss = -5
)

// ProgressService updates learning progress.
type ProgressService struct {
	DB    *gorm.DB
	Cache ReviewCache
	Now   func() time.Time
}

// RecordAnswer counts one answer on (subject, topic) for userID and returns
// the updated progress row.
func (s *ProgressService) RecordAnswer(ctx context.Context, userID, subject, topic string, correct bool) (*domain.LearningProgress, error) {
	ctx, span := otel.Tracer("services/ProgressService").Start(ctx, "RecordAnswer",
		trace.WithAttributes(
			attribute.String("subject", subject),
			attribute.String("topic", topic),
			attribute.Bool("correct", correct),
		),
	)
	defer span.End()

	subject = clipRunes(strings.TrimSpace(subject), maxSubjectRunes)
	topic = clipRunes(strings.TrimSpace(topic), maxTopicRunes)
	if subject == "" && topic == "" {
		return nil, invalid("subject", "subject or topic is required")
	}

	p, err := repo.EnsureProfile(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	key := repo.ProgressKey{ProfileID: p.ID, UserID: userID, Subject: subject, Topic: topic}
	delta := repo.ProgressDelta{Total: 1, Mastery: masteryLoss, ReviewedAt: now}
	if correct {
		delta.Correct = 1
		delta.Mastery = masteryGain
	}
	if err := repo.UpsertLearningProgress(ctx, s.DB, key, delta); err != nil {
		return nil, err
	}

	lp, err := repo.GetLearningProgress(ctx, s.DB, key)
	if err != nil {
		return nil, err
	}
	next := now.Add(review.NextReviewInterval(review.NextReviewLabel(lp.MasteryLevel, 0)))
	if err := repo.SetNextReview(ctx, s.DB, lp.ID, next); err != nil {
		return nil, err
	}
	lp.NextReviewAt = &next

	invalidateReview(ctx, s.Cache, userID)
	return lp, nil
}

func (s *ProgressService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
