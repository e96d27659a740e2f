package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound so callers can use either.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateConversation inserts c, assigning an ID and timestamps when unset.
func CreateConversation(ctx context.Context, db *gorm.DB, c *domain.Conversation) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	// IsActive has a DB default; Select forces false to be written too.
	return db.WithContext(ctx).Select("*").Create(c).Error
}

// GetActiveConversation returns the most recently updated active
// conversation of userID in mode. Several active rows may exist after a
// race; the newest one wins.
func GetActiveConversation(ctx context.Context, db *gorm.DB, userID string, mode domain.Mode) (*domain.Conversation, error) {
	var c domain.Conversation
	err := db.WithContext(ctx).
		Where("user_id = ? AND mode = ? AND is_active = ?", userID, mode, true).
		Order("updated_at desc, created_at desc").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeactivateConversations clears the active flag on all of userID's
// conversations in mode.
func DeactivateConversations(ctx context.Context, db *gorm.DB, userID string, mode domain.Mode) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("user_id = ? AND mode = ? AND is_active = ?", userID, mode, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// GetConversation fetches a conversation by id, scoped to its owner.
func GetConversation(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Conversation, error) {
	var c domain.Conversation
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListConversations returns every conversation of userID, most recent
// activity first.
func ListConversations(ctx context.Context, db *gorm.DB, userID string) ([]domain.Conversation, error) {
	var out []domain.Conversation
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc, id asc").
		Find(&out).Error
	return out, err
}

// CountConversations returns the number of conversations owned by userID.
func CountConversations(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListConversationsPage returns one page of userID's conversations.
func ListConversationsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Conversation, error) {
	var out []domain.Conversation
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc, id asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListConversationIDs returns the ids of every conversation owned by userID.
func ListConversationIDs(ctx context.Context, db *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Pluck("id", &ids).Error
	return ids, err
}

// UpdateConversationTitle renames a conversation owned by userID. It
// returns ErrNotFound when nothing matched.
func UpdateConversationTitle(ctx context.Context, db *gorm.DB, id, userID, title string) error {
	res := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("title", title)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetInitialTitle stores title only if the conversation has none yet and
// reports whether it did.
func SetInitialTitle(ctx context.Context, db *gorm.DB, id, title string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND title IS NULL", id).
		UpdateColumn("title", title)
	return res.RowsAffected > 0, res.Error
}

// TouchConversation bumps updated_at to at.
func TouchConversation(ctx context.Context, db *gorm.DB, id string, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", at).Error
}

// DeleteConversation removes a conversation owned by userID together with
// its messages and their feedback, in a single transaction. Children go
// first so an interrupted delete never leaves orphans behind.
func DeleteConversation(ctx context.Context, db *gorm.DB, id, userID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&domain.Conversation{}).
			Where("id = ? AND user_id = ?", id, userID).
			Count(&owned).Error; err != nil {
			return err
		}
		if owned == 0 {
			return ErrNotFound
		}

		msgIDs := tx.Model(&domain.Message{}).Select("id").Where("conversation_id = ?", id)
		if err := tx.Where("message_id IN (?)", msgIDs).Delete(&domain.Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&domain.Idempotency{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Conversation{}).Error
	})
}
