// Package services – MessageService
//
// MessageService runs one tutoring turn: it stores the student's message,
// records practice on the conversation's topic, composes the tutor prompt
// (with knowledge-base material when the question calls for it), asks the
// model and stores the reply. The first turn of a conversation also names
// it in the background.
//
// Secondary work (progress touch, retrieval, titling) is best effort: its
// failures are logged and never change the reply.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/llm"
	"github.com/tbourn/go-tutor-backend/internal/prompt"
	"github.com/tbourn/go-tutor-backend/internal/rag"
	"github.com/tbourn/go-tutor-backend/internal/repo"
	"github.com/tbourn/go-tutor-backend/internal/search"
)

const (
	defaultMaxMessageRunes = 4000
	defaultTitleTimeout    = 20 * time.Second
	defaultTitleNew        = "Nova conversa"
	maxTitleWords          = 5
)

// MessageService coordinates a tutoring turn.
type MessageService struct {
	DB        *gorm.DB
	LLM       llm.Client
	Retriever *rag.Retriever // nil disables retrieval
	Cache     ReviewCache

	// MaxMessageRunes caps the student's message length.
	MaxMessageRunes int
	// HistoryLimit keeps only the most recent messages in the prompt; 0 sends all.
	HistoryLimit int

	// Title generation
	TitleTimeout time.Duration
	TitleMaxLen  int
	TitleLocale  language.Tag

	// Now is the clock; nil means time.Now.
	Now func() time.Time

	wg sync.WaitGroup
}

// SendResult is the outcome of a tutoring turn.
type SendResult struct {
	UserMessage *domain.Message `json:"user_message"`
	Reply       *domain.Message `json:"message"`
	// Retrieved reports whether knowledge-base material was added to the prompt.
	Retrieved bool `json:"retrieved"`
}

// Send stores text as the student's message in conversationID, asks the
// tutor and stores its reply.
//
// Errors: ErrEmptyMessage, ErrTooLong, ErrConversationNotFound and
// ErrPlanRestricted are returned before anything is written.
// ErrUpstreamTimeout and ErrUpstream mean the student's message was stored
// but the tutor did not answer.
func (s *MessageService) Send(ctx context.Context, userID, conversationID, text string) (*SendResult, error) {
	ctx, span := otel.Tracer("services/MessageService").Start(ctx, "Send",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > s.maxMessageRunes() {
		return nil, ErrTooLong
	}

	conv, err := repo.GetConversation(ctx, s.DB, conversationID, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	profile, err := repo.EnsureProfile(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	if err := checkPlan(profile, conv.Mode); err != nil {
		return nil, err
	}
	if s.LLM == nil {
		return nil, fmt.Errorf("%w: no model configured", ErrUpstream)
	}

	// Store the student's message.
	var (
		prior   int64
		userMsg *domain.Message
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := repo.CountMessages(ctx, tx, conv.ID)
		if err != nil {
			return err
		}
		prior = n
		if userMsg, err = repo.AppendMessage(ctx, tx, conv.ID, domain.RoleUser, text, nil); err != nil {
			return err
		}
		return repo.TouchConversation(ctx, tx, conv.ID, s.now())
	})
	if err != nil {
		return nil, err
	}

	// Titling hangs off the first stored message, not the reply, so a
	// failed first turn still names the conversation.
	if prior == 0 {
		s.nameInBackground(ctx, conv.ID, text)
	}

	s.touchProgress(ctx, conv)

	history, err := repo.ListMessages(ctx, s.DB, conv.ID, s.HistoryLimit)
	if err != nil {
		return nil, err
	}

	var kc *domain.KnowledgeContext
	if got, ok := s.Retriever.Retrieve(ctx, text, conv.Mode); ok {
		kc = &got
	}
	system := prompt.Compose(profile, kc)

	reply, err := s.LLM.Invoke(ctx, system, toTurns(history))
	if err != nil {
		span.RecordError(err)
		return nil, upstreamError(err)
	}

	var tokens *int
	if n := reply.Usage.Total(); n > 0 {
		tokens = &n
	}
	var assistant *domain.Message
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if assistant, err = repo.AppendMessage(ctx, tx, conv.ID, domain.RoleAssistant, reply.Content, tokens); err != nil {
			return err
		}
		return repo.TouchConversation(ctx, tx, conv.ID, s.now())
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Bool("rag.used", kc != nil), attribute.Int("llm.tokens", reply.Usage.Total()))
	return &SendResult{UserMessage: userMsg, Reply: assistant, Retrieved: kc != nil}, nil
}

// ListPage returns a page of messages of a conversation owned by userID,
// oldest first.
func (s *MessageService) ListPage(ctx context.Context, userID, conversationID string, page, pageSize int) ([]domain.Message, int64, error) {
	ctx, span := otel.Tracer("services/MessageService").Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	if _, err := repo.GetConversation(ctx, s.DB, conversationID, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, 0, ErrConversationNotFound
		}
		return nil, 0, err
	}

	total, err := repo.CountMessages(ctx, s.DB, conversationID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Message{}, 0, nil
	}

	items, err := repo.ListMessagesPage(ctx, s.DB, conversationID, offset, pageSize)
	return items, total, err
}

// Stats returns the message count and newest message time of a
// conversation owned by userID.
func (s *MessageService) Stats(ctx context.Context, userID, conversationID string) (int64, int64, error) {
	if _, err := repo.GetConversation(ctx, s.DB, conversationID, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, 0, ErrConversationNotFound
		}
		return 0, 0, err
	}
	count, latest, err := repo.MessagesStats(ctx, s.DB, conversationID)
	if err != nil || latest == nil {
		return count, 0, err
	}
	return count, latest.UnixNano(), nil
}

// GetForUser returns a message whose conversation belongs to userID.
func (s *MessageService) GetForUser(ctx context.Context, userID, messageID string) (*domain.Message, error) {
	m, err := repo.GetMessageForUser(ctx, s.DB, messageID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrMessageNotFound
	}
	return m, err
}

// Wait blocks until background title generation has finished.
func (s *MessageService) Wait() { s.wg.Wait() }

// touchProgress counts the turn as practice on the conversation's
// (subject, topic). Conversations without either are skipped.
func (s *MessageService) touchProgress(ctx context.Context, conv *domain.Conversation) {
	if conv.Subject == "" && conv.Topic == "" {
		return
	}
	err := repo.UpsertLearningProgress(ctx, s.DB,
		repo.ProgressKey{ProfileID: conv.ProfileID, UserID: conv.UserID, Subject: conv.Subject, Topic: conv.Topic},
		repo.ProgressDelta{Practice: 1, Total: 1, ReviewedAt: s.now()},
	)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("conversation_id", conv.ID).
			Str("subject", conv.Subject).
			Str("topic", conv.Topic).
			Msg("progress touch failed")
		return
	}
	invalidateReview(ctx, s.Cache, conv.UserID)
}

// nameInBackground titles the conversation from its first message without
// delaying the reply. The work outlives the request but not TitleTimeout.
func (s *MessageService) nameInBackground(ctx context.Context, conversationID, firstMessage string) {
	timeout := s.TitleTimeout
	if timeout <= 0 {
		timeout = defaultTitleTimeout
	}
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				zerolog.Ctx(bg).Error().Interface("panic", r).Str("conversation_id", conversationID).Msg("title generation panicked")
			}
		}()
		s.generateTitle(bg, conversationID, firstMessage)
	}()
}

// generateTitle asks the model for a short title and falls back to a
// heuristic one. The title is stored only if the conversation has none.
func (s *MessageService) generateTitle(ctx context.Context, conversationID, firstMessage string) {
	lg := zerolog.Ctx(ctx)

	title := ""
	reply, err := s.LLM.Invoke(ctx, prompt.TitleInstruction, []llm.Turn{{Role: domain.RoleUser, Content: firstMessage}})
	if err != nil {
		lg.Warn().Err(err).Str("conversation_id", conversationID).Msg("title generation failed, using heuristic")
	} else {
		title = cleanTitle(reply.Content, s.titleMaxLen())
	}
	if title == "" {
		title = s.generateTitleFromPrompt(firstMessage)
	}
	if title == "" {
		title = defaultTitleNew
	}

	set, err := repo.SetInitialTitle(ctx, s.DB, conversationID, clipRunes(title, s.titleMaxLen()))
	if err != nil {
		lg.Warn().Err(err).Str("conversation_id", conversationID).Msg("storing title failed")
		return
	}
	if !set {
		lg.Debug().Str("conversation_id", conversationID).Msg("conversation already titled")
	}
}

func (s *MessageService) maxMessageRunes() int {
	if s.MaxMessageRunes > 0 {
		return s.MaxMessageRunes
	}
	return defaultMaxMessageRunes
}

func (s *MessageService) titleMaxLen() int {
	if s.TitleMaxLen > 0 {
		return s.TitleMaxLen
	}
	return 60
}

func (s *MessageService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func toTurns(msgs []domain.Message) []llm.Turn {
	out := make([]llm.Turn, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Turn{Role: m.Role, Content: m.Content})
	}
	return out
}

// upstreamError maps model failures to the service errors handlers know.
func upstreamError(err error) error {
	switch {
	case errors.Is(err, llm.ErrTimeout):
		return fmt.Errorf("%w: %w", ErrUpstreamTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
}

// --- Title helpers ---

var (
	titleWordRE  = regexp.MustCompile(`[\p{L}]+[\p{N}]*|[\p{N}]+`)
	titleQuoteRE = regexp.MustCompile("[\"'`“”‘’«»*#_]")
	titleLeadRE  = regexp.MustCompile(`(?i)^\s*(t[ií]tulo|title)\s*:\s*`)
)

// cleanTitle turns raw model output into a stored title: first line only,
// no quotes or markup, at most five words, clipped to maxLen runes.
func cleanTitle(raw string, maxLen int) string {
	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = titleLeadRE.ReplaceAllString(line, "")
	line = titleQuoteRE.ReplaceAllString(line, "")
	words := strings.Fields(line)
	if len(words) > maxTitleWords {
		words = words[:maxTitleWords]
	}
	title := strings.TrimRight(strings.Join(words, " "), ".,;:!?-–— ")
	return clipRunes(title, maxLen)
}

// generateTitleFromPrompt derives a title from the student's first message:
// the first content words, title-cased.
func (s *MessageService) generateTitleFromPrompt(msg string) string {
	toks := titleWordRE.FindAllString(strings.ToLower(strings.TrimSpace(msg)), -1)
	if len(toks) == 0 {
		return ""
	}

	stop := make(map[string]struct{}, len(search.PortugueseStopwords))
	for _, w := range search.PortugueseStopwords {
		stop[w] = struct{}{}
	}

	titleCaser := cases.Title(s.titleLocale())
	out := make([]string, 0, maxTitleWords)
	for _, w := range toks {
		if _, skip := stop[search.Fold(w)]; skip {
			continue
		}
		out = append(out, titleCaser.String(w))
		if len(out) >= maxTitleWords {
			break
		}
	}
	return strings.Join(out, " ")
}

func (s *MessageService) titleLocale() language.Tag {
	if s.TitleLocale == language.Und {
		return language.Portuguese
	}
	return s.TitleLocale
}
