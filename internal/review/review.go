// Package review ranks the topics a student should revisit.
//
// Two sources are merged on (subject, topic): explicit learning-progress
// rows, which carry authoritative mastery and practice numbers, and
// conversations, which backfill topics the student talked about but never
// practised. Each entry gets a priority score that grows with time since
// the last review and shrinks with mastery:
//
//	daysSince = floor((now - lastReviewed) / 24h), 999 when never reviewed
//	score     = (100 - mastery) * 0.5 + min(daysSince*10, 100) + min(practice*5, 50)
//
// Rank is pure; the service layer loads the inputs.
package review

import (
	"math"
	"sort"
	"time"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// NeverReviewed is the DaysSince value for topics with no review date.
const NeverReviewed = 999

// Next-review labels, most relaxed first.
const (
	LabelOneWeek   = "in 1 week"
	LabelThreeDays = "in 3 days"
	LabelTomorrow  = "tomorrow"
	LabelToday     = "today"
)

// Messages returned alongside the topics.
const (
	MsgNoConversations = "Ainda não tens conversas com o Tutor. Começa uma conversa sobre uma disciplina para receberes sugestões de revisão."
	MsgNoTopics        = "As tuas conversas ainda não têm disciplina ou tema. Indica a disciplina ao começar uma conversa para acompanharmos o teu progresso."
)

// Topic is one ranked review suggestion.
type Topic struct {
	Subject         string     `json:"subject"`
	Topic           string     `json:"topic"`
	MasteryLevel    int        `json:"mastery_level"`
	PracticeCount   int        `json:"practice_count"`
	CorrectAnswers  int        `json:"correct_answers"`
	TotalAnswers    int        `json:"total_answers"`
	Accuracy        int        `json:"accuracy"`
	LastReviewedAt  *time.Time `json:"last_reviewed_at"`
	DaysSince       int        `json:"days_since_review"`
	PriorityScore   float64    `json:"priority_score"`
	NextReview      string     `json:"next_review"`
	HasProgress     bool       `json:"has_progress"`
	ConversationIDs []string   `json:"conversation_ids"`
}

// Result is the outcome of Rank. When HasConversations is false, Topics
// is empty and Message explains why.
type Result struct {
	HasConversations bool    `json:"has_conversations"`
	Message          string  `json:"message,omitempty"`
	Topics           []Topic `json:"topics"`
	TotalTopics      int     `json:"total_topics"`
}

type key struct{ subject, topic string }

// Rank merges progress and conversations, scores every topic at now and
// returns them most urgent first, truncated to limit (limit <= 0 keeps all).
// Ties keep input order: progress rows first, then conversations.
func Rank(progress []domain.LearningProgress, convs []domain.Conversation, now time.Time, limit int) Result {
	if len(convs) == 0 {
		return Result{HasConversations: false, Message: MsgNoConversations, Topics: []Topic{}}
	}

	var (
		order []key
		byKey = make(map[key]*Topic)
	)
	for _, p := range progress {
		k := key{p.Subject, p.Topic}
		if _, dup := byKey[k]; dup {
			continue
		}
		byKey[k] = &Topic{
			Subject:         p.Subject,
			Topic:           p.Topic,
			MasteryLevel:    p.MasteryLevel,
			PracticeCount:   p.PracticeCount,
			CorrectAnswers:  p.CorrectAnswers,
			TotalAnswers:    p.TotalAnswers,
			LastReviewedAt:  p.LastReviewedAt,
			HasProgress:     true,
			ConversationIDs: []string{},
		}
		order = append(order, k)
	}

	for _, c := range convs {
		if c.Subject == "" && c.Topic == "" {
			continue
		}
		k := key{c.Subject, c.Topic}
		if t, ok := byKey[k]; ok {
			t.ConversationIDs = append(t.ConversationIDs, c.ID)
			// Inferred entries follow the most recent conversation.
			if !t.HasProgress && c.UpdatedAt.After(*t.LastReviewedAt) {
				at := c.UpdatedAt
				t.LastReviewedAt = &at
			}
			continue
		}
		at := c.UpdatedAt
		byKey[k] = &Topic{
			Subject:         c.Subject,
			Topic:           c.Topic,
			PracticeCount:   1,
			LastReviewedAt:  &at,
			ConversationIDs: []string{c.ID},
		}
		order = append(order, k)
	}

	topics := make([]Topic, 0, len(order))
	for _, k := range order {
		t := byKey[k]
		t.DaysSince = DaysSince(t.LastReviewedAt, now)
		t.PriorityScore = PriorityScore(t.MasteryLevel, t.DaysSince, t.PracticeCount)
		t.NextReview = NextReviewLabel(t.MasteryLevel, t.DaysSince)
		t.Accuracy = Accuracy(t.CorrectAnswers, t.TotalAnswers)
		topics = append(topics, *t)
	}

	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].PriorityScore > topics[j].PriorityScore
	})

	res := Result{HasConversations: true, Topics: topics, TotalTopics: len(topics)}
	if len(topics) == 0 {
		res.Message = MsgNoTopics
	}
	if limit > 0 && len(res.Topics) > limit {
		res.Topics = res.Topics[:limit]
	}
	return res
}

// DaysSince returns whole days between last and now. Nil means never
// reviewed (NeverReviewed); a future last counts as 0.
func DaysSince(last *time.Time, now time.Time) int {
	if last == nil {
		return NeverReviewed
	}
	d := now.Sub(*last)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// PriorityScore is higher for topics that need review sooner.
func PriorityScore(mastery, daysSince, practice int) float64 {
	return float64(100-mastery)*0.5 +
		float64(min(daysSince*10, 100)) +
		float64(min(practice*5, 50))
}

// NextReviewLabel returns when the topic should be reviewed next. Rules are
// evaluated in order and the first match wins.
func NextReviewLabel(mastery, daysSince int) string {
	switch {
	case mastery >= 90 && daysSince < 7:
		return LabelOneWeek
	case mastery >= 75 && daysSince < 3:
		return LabelThreeDays
	case daysSince < 1:
		return LabelTomorrow
	default:
		return LabelToday
	}
}

// NextReviewInterval maps a label to the delay it stands for.
func NextReviewInterval(label string) time.Duration {
	switch label {
	case LabelOneWeek:
		return 7 * 24 * time.Hour
	case LabelThreeDays:
		return 3 * 24 * time.Hour
	case LabelTomorrow:
		return 24 * time.Hour
	default:
		return 0
	}
}

// Accuracy is the rounded percentage of correct answers, 0 without answers.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
