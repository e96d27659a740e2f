package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// ProgressKey identifies one learning-progress row.
type ProgressKey struct {
	ProfileID string
	UserID    string
	Subject   string
	Topic     string
}

// ProgressDelta is added to a learning-progress row. Counters are
// increments; Mastery is a signed step clamped to [0,100].
type ProgressDelta struct {
	Practice   int
	Correct    int
	Total      int
	Mastery    int
	ReviewedAt time.Time
}

// UpsertLearningProgress applies d to the row identified by k in a single
// INSERT ... ON CONFLICT DO UPDATE statement, so concurrent callers never
// lose increments. A missing row is created with the delta as its values.
func UpsertLearningProgress(ctx context.Context, db *gorm.DB, k ProgressKey, d ProgressDelta) error {
	at := d.ReviewedAt.UTC()
	row := &domain.LearningProgress{
		ID:             uuid.NewString(),
		ProfileID:      k.ProfileID,
		UserID:         k.UserID,
		Subject:        k.Subject,
		Topic:          k.Topic,
		MasteryLevel:   clampMastery(d.Mastery),
		PracticeCount:  d.Practice,
		CorrectAnswers: d.Correct,
		TotalAnswers:   d.Total,
		LastReviewedAt: &at,
		CreatedAt:      at,
		UpdatedAt:      at,
	}

	updates := map[string]any{
		"practice_count":   gorm.Expr("learning_progress.practice_count + ?", d.Practice),
		"correct_answers":  gorm.Expr("learning_progress.correct_answers + ?", d.Correct),
		"total_answers":    gorm.Expr("learning_progress.total_answers + ?", d.Total),
		"last_reviewed_at": at,
		"updated_at":       at,
	}
	if d.Mastery != 0 {
		updates["mastery_level"] = gorm.Expr(
			"CASE WHEN learning_progress.mastery_level + ? > 100 THEN 100 "+
				"WHEN learning_progress.mastery_level + ? < 0 THEN 0 "+
				"ELSE learning_progress.mastery_level + ? END",
			d.Mastery, d.Mastery, d.Mastery)
	}

	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}, {Name: "subject"}, {Name: "topic"}},
			DoUpdates: clause.Assignments(updates),
		}).
		Create(row).Error
}

// GetLearningProgress loads the row identified by k.
func GetLearningProgress(ctx context.Context, db *gorm.DB, k ProgressKey) (*domain.LearningProgress, error) {
	var lp domain.LearningProgress
	err := db.WithContext(ctx).
		Where("profile_id = ? AND subject = ? AND topic = ?", k.ProfileID, k.Subject, k.Topic).
		First(&lp).Error
	if err != nil {
		return nil, err
	}
	return &lp, nil
}

// SetNextReview stores the scheduled review time of a progress row.
func SetNextReview(ctx context.Context, db *gorm.DB, id string, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.LearningProgress{}).
		Where("id = ?", id).
		UpdateColumn("next_review_at", at.UTC()).Error
}

// ListLearningProgress returns every progress row of a user.
func ListLearningProgress(ctx context.Context, db *gorm.DB, userID string) ([]domain.LearningProgress, error) {
	var out []domain.LearningProgress
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("subject asc, topic asc").
		Find(&out).Error
	return out, err
}

func clampMastery(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
