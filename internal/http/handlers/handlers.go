// Package handlers exposes the tutoring services over REST.
//
// Handlers are transport-thin: they bind and validate input, call a
// service, and translate the result (or error) into a response. They
// depend on the small interfaces below, never on concrete services.
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/http/middleware"
	"github.com/tbourn/go-tutor-backend/internal/review"
	"github.com/tbourn/go-tutor-backend/internal/services"
	"github.com/tbourn/go-tutor-backend/internal/utils"
)

// ConversationService manages conversation lifecycles.
type ConversationService interface {
	GetOrCreateActive(ctx context.Context, userID string, in services.NewConversation) (*domain.Conversation, error)
	Create(ctx context.Context, userID string, in services.NewConversation) (*domain.Conversation, error)
	Get(ctx context.Context, userID, id string) (*domain.Conversation, error)
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Conversation, int64, error)
	Stats(ctx context.Context, userID string) (count int64, latestUnixNano int64, err error)
	UpdateTitle(ctx context.Context, userID, id, title string) error
	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int, error)
}

// MessageService sends student messages and reads history.
type MessageService interface {
	Send(ctx context.Context, userID, conversationID, text string) (*services.SendResult, error)
	ListPage(ctx context.Context, userID, conversationID string, page, pageSize int) ([]domain.Message, int64, error)
	Stats(ctx context.Context, userID, conversationID string) (count int64, latestUnixNano int64, err error)
	GetForUser(ctx context.Context, userID, messageID string) (*domain.Message, error)
}

// FeedbackService records thumbs up/down on tutor replies.
type FeedbackService interface {
	Leave(ctx context.Context, userID, messageID string, value int) error
}

// ProfileService reads and edits the student profile.
type ProfileService interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, userID string, u services.ProfileUpdate) (*domain.Profile, error)
	ChangePlan(ctx context.Context, userID, plan string) (*domain.Profile, error)
	Modes(ctx context.Context, userID string) (domain.Plan, []services.ModeAvailability, error)
}

// ReviewService ranks topics for review.
type ReviewService interface {
	Topics(ctx context.Context, userID string, limit int) (review.Result, error)
}

// ProgressService records quiz answers.
type ProgressService interface {
	RecordAnswer(ctx context.Context, userID, subject, topic string, correct bool) (*domain.LearningProgress, error)
}

// IdempotencyStore remembers which assistant message answered a keyed
// request. Failures are logged, never surfaced.
type IdempotencyStore interface {
	Remember(ctx context.Context, userID, conversationID, key, messageID string) error
}

// Deps bundles the services the handlers call. Idempotency may be nil.
type Deps struct {
	Conversations ConversationService
	Messages      MessageService
	Feedback      FeedbackService
	Profiles      ProfileService
	Review        ReviewService
	Progress      ProgressService
	Idempotency   IdempotencyStore
}

// Handlers groups every endpoint of the API.
type Handlers struct {
	convSvc     ConversationService
	msgSvc      MessageService
	fbSvc       FeedbackService
	profileSvc  ProfileService
	reviewSvc   ReviewService
	progressSvc ProgressService
	idem        IdempotencyStore
}

// New binds the handlers to d.
func New(d Deps) *Handlers {
	return &Handlers{
		convSvc:     d.Conversations,
		msgSvc:      d.Messages,
		fbSvc:       d.Feedback,
		profileSvc:  d.Profiles,
		reviewSvc:   d.Review,
		progressSvc: d.Progress,
		idem:        d.Idempotency,
	}
}

// Pagination carries list metadata.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func pageParams(c *gin.Context) (int, int) {
	return utils.ParsePage(c.Query("page"), c.Query("page_size"))
}

func newPagination(page, size int, total int64) Pagination {
	pages := utils.TotalPages(total, size)
	return Pagination{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
	}
}

// userID is the caller resolved by the Identity middleware.
func userID(c *gin.Context) string {
	return middleware.UserID(c)
}

// notModified sets a weak ETag built from scope, count and latest change
// and reports whether the client already holds it.
func notModified(c *gin.Context, scope string, count, latest int64) bool {
	etag := fmt.Sprintf(`W/"%s:%d:%d"`, scope, count, latest)
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
