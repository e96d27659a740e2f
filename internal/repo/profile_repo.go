package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// GetProfileByUser returns the profile of userID or ErrNotFound.
func GetProfileByUser(ctx context.Context, db *gorm.DB, userID string) (*domain.Profile, error) {
	var p domain.Profile
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// EnsureProfile returns the profile of userID, creating a minimal one on
// first access. Concurrent first requests converge on the same row.
func EnsureProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.Profile, error) {
	if p, err := GetProfileByUser(ctx, db, userID); err == nil {
		return p, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Profile{
		ID:        uuid.NewString(),
		UserID:    userID,
		Plan:      domain.PlanFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(p).Error
	if err != nil {
		return nil, err
	}
	return GetProfileByUser(ctx, db, userID)
}

// SaveProfile writes every column of p.
func SaveProfile(ctx context.Context, db *gorm.DB, p *domain.Profile) error {
	p.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Save(p).Error
}

// SetProfilePlan changes the plan of userID's profile.
func SetProfilePlan(ctx context.Context, db *gorm.DB, userID string, plan domain.Plan) error {
	res := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"plan": plan, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
