// Package services – ConversationService
//
// ConversationService owns the lifecycle of tutoring conversations: the
// active conversation of each (user, mode), explicit new conversations,
// renames and deletion. Mode availability is checked against the caller's
// plan before anything is written.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/repo"
)

const (
	maxSubjectRunes = 128
	maxTopicRunes   = 255

	defaultTitleUntitled = "Sem título"
)

// NewConversation describes a conversation to open.
type NewConversation struct {
	Mode    domain.Mode
	Subject string
	Topic   string
}

// ConversationService manages conversations. Every lookup is scoped to the
// owning user.
type ConversationService struct {
	DB    *gorm.DB
	Cache ReviewCache

	// TitleMaxLen caps stored titles by rune length.
	TitleMaxLen int
}

// NewConversationService constructs a ConversationService with defaults.
func NewConversationService(db *gorm.DB, cache ReviewCache) *ConversationService {
	return &ConversationService{DB: db, Cache: cache, TitleMaxLen: 60}
}

// GetOrCreateActive returns the active conversation of userID in in.Mode,
// creating one bound to the user's profile when none exists. Subject and
// topic are only used for a newly created conversation.
//
// Concurrent first calls may each create a conversation; later calls
// converge on the most recently updated one.
func (s *ConversationService) GetOrCreateActive(ctx context.Context, userID string, in NewConversation) (*domain.Conversation, error) {
	ctx, span := otel.Tracer("services/ConversationService").Start(ctx, "GetOrCreateActive",
		trace.WithAttributes(attribute.String("user.id", userID), attribute.String("mode", string(in.Mode))))
	defer span.End()

	in, profile, err := s.admit(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	c, err := repo.GetActiveConversation(ctx, s.DB, userID, in.Mode)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	c = &domain.Conversation{
		UserID:    userID,
		ProfileID: profile.ID,
		Mode:      in.Mode,
		Subject:   in.Subject,
		Topic:     in.Topic,
		IsActive:  true,
	}
	if err := repo.CreateConversation(ctx, s.DB, c); err != nil {
		return nil, err
	}
	invalidateReview(ctx, s.Cache, userID)
	return c, nil
}

// Create starts a fresh conversation in in.Mode and makes it the active
// one, deactivating the user's other active conversations of that mode.
func (s *ConversationService) Create(ctx context.Context, userID string, in NewConversation) (*domain.Conversation, error) {
	ctx, span := otel.Tracer("services/ConversationService").Start(ctx, "Create",
		trace.WithAttributes(attribute.String("user.id", userID), attribute.String("mode", string(in.Mode))))
	defer span.End()

	in, profile, err := s.admit(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	c := &domain.Conversation{
		UserID:    userID,
		ProfileID: profile.ID,
		Mode:      in.Mode,
		Subject:   in.Subject,
		Topic:     in.Topic,
		IsActive:  true,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.DeactivateConversations(ctx, tx, userID, in.Mode); err != nil {
			return err
		}
		return repo.CreateConversation(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}
	invalidateReview(ctx, s.Cache, userID)
	return c, nil
}

// admit validates in, ensures the profile exists and checks the plan. It
// never writes a conversation.
func (s *ConversationService) admit(ctx context.Context, userID string, in NewConversation) (NewConversation, *domain.Profile, error) {
	mode, ok := domain.ParseMode(string(in.Mode))
	if !ok {
		return in, nil, invalid("mode", fmt.Sprintf("unknown mode %q", in.Mode))
	}
	in.Mode = mode
	in.Subject = clipRunes(normalizeTitle(in.Subject), maxSubjectRunes)
	in.Topic = clipRunes(normalizeTitle(in.Topic), maxTopicRunes)

	profile, err := repo.EnsureProfile(ctx, s.DB, userID)
	if err != nil {
		return in, nil, err
	}
	if err := checkPlan(profile, mode); err != nil {
		return in, nil, err
	}
	return in, profile, nil
}

// Get returns conversation id when it belongs to userID.
func (s *ConversationService) Get(ctx context.Context, userID, id string) (*domain.Conversation, error) {
	c, err := repo.GetConversation(ctx, s.DB, id, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrConversationNotFound
	}
	return c, err
}

// ListPage returns a page of userID's conversations, most recent activity
// first, together with the total count.
func (s *ConversationService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Conversation, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountConversations(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Conversation{}, 0, nil
	}

	items, err := repo.ListConversationsPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}

// Stats returns the conversation count and latest activity of userID.
func (s *ConversationService) Stats(ctx context.Context, userID string) (int64, int64, error) {
	count, latest, err := repo.ConversationsStats(ctx, s.DB, userID)
	if err != nil || latest == nil {
		return count, 0, err
	}
	return count, latest.UnixNano(), nil
}

// UpdateTitle renames a conversation owned by userID. A blank title becomes
// the untitled placeholder.
func (s *ConversationService) UpdateTitle(ctx context.Context, userID, id, title string) error {
	title = normalizeTitle(title)
	if title == "" {
		title = defaultTitleUntitled
	}
	err := repo.UpdateConversationTitle(ctx, s.DB, id, userID, clipRunes(title, s.titleMaxLen()))
	if errors.Is(err, repo.ErrNotFound) {
		return ErrConversationNotFound
	}
	return err
}

// Delete removes a conversation owned by userID with all its messages and
// their feedback. The removal is a single transaction.
func (s *ConversationService) Delete(ctx context.Context, userID, id string) error {
	ctx, span := otel.Tracer("services/ConversationService").Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("user.id", userID), attribute.String("conversation.id", id)))
	defer span.End()

	if err := repo.DeleteConversation(ctx, s.DB, id, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrConversationNotFound
		}
		return err
	}
	invalidateReview(ctx, s.Cache, userID)
	return nil
}

// DeleteAll removes every conversation of userID, one transaction per
// conversation, and returns how many were deleted. If it stops half way
// each conversation is either fully present or fully gone.
func (s *ConversationService) DeleteAll(ctx context.Context, userID string) (int, error) {
	ctx, span := otel.Tracer("services/ConversationService").Start(ctx, "DeleteAll",
		trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	ids, err := repo.ListConversationIDs(ctx, s.DB, userID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	defer func() {
		if deleted > 0 {
			invalidateReview(ctx, s.Cache, userID)
		}
	}()
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		err := repo.DeleteConversation(ctx, s.DB, id, userID)
		switch {
		case err == nil:
			deleted++
		case errors.Is(err, repo.ErrNotFound):
			// deleted concurrently
		default:
			return deleted, err
		}
	}
	return deleted, nil
}

func (s *ConversationService) titleMaxLen() int {
	if s.TitleMaxLen > 0 {
		return s.TitleMaxLen
	}
	return 60
}

// checkPlan rejects modes the profile's plan does not include.
func checkPlan(p *domain.Profile, mode domain.Mode) error {
	plan := p.EffectivePlan()
	if !plan.Allows(mode) {
		return fmt.Errorf("%w: %s is not included in the %s plan", ErrPlanRestricted, mode, plan)
	}
	return nil
}

// clipRunes truncates s to at most n runes.
func clipRunes(s string, n int) string {
	if n > 0 && utf8.RuneCountInString(s) > n {
		return string([]rune(s)[:n])
	}
	return s
}

// normalizeTitle trims whitespace and collapses multiple spaces to one.
func normalizeTitle(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

var whitespaceRE = regexp.MustCompile(`\s+`)
