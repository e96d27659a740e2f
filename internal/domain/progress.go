package domain

import "time"

// LearningProgress tracks how well a profile knows one (subject, topic)
// pair. Rows are created on the first practice and updated atomically
// afterwards; counters only grow.
type LearningProgress struct {
	ID             string     `json:"id"               gorm:"type:char(36);primaryKey"`
	ProfileID      string     `json:"profile_id"       gorm:"type:char(36);not null;uniqueIndex:ux_progress_profile_subject_topic,priority:1"`
	UserID         string     `json:"user_id"          gorm:"type:varchar(64);not null;index"`
	Subject        string     `json:"subject"          gorm:"type:varchar(128);not null;uniqueIndex:ux_progress_profile_subject_topic,priority:2"`
	Topic          string     `json:"topic"            gorm:"type:varchar(255);not null;uniqueIndex:ux_progress_profile_subject_topic,priority:3"`
	MasteryLevel   int        `json:"mastery_level"    gorm:"not null;default:0"`
	PracticeCount  int        `json:"practice_count"   gorm:"not null;default:0"`
	CorrectAnswers int        `json:"correct_answers"  gorm:"not null;default:0"`
	TotalAnswers   int        `json:"total_answers"    gorm:"not null;default:0"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	NextReviewAt   *time.Time `json:"next_review_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName returns the database table name for LearningProgress.
func (LearningProgress) TableName() string { return "learning_progress" }

// KnowledgeContext is the knowledge-base material attached to a prompt.
type KnowledgeContext struct {
	HasRelevantContent bool   `json:"has_relevant_content"`
	Summary            string `json:"summary"`
}
