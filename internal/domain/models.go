// Package domain defines the persistence models of the tutoring backend:
// student profiles, conversations and their messages, learning progress,
// feedback and idempotency records. The types are mapped with GORM and
// shared by the repository and service layers.
package domain

import (
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation is a tutoring session owned by a user and bound to a single
// study mode. At most one conversation per (user, mode) is expected to be
// active; the service layer tolerates duplicates and picks the most
// recently updated one.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID / ProfileID: owner identity and the profile snapshot it uses.
//   - Mode: one of the Mode constants.
//   - Subject / Topic: optional; the empty string means "not set".
//   - Title: NULL until generated after the first exchange.
//   - IsActive: whether this is the conversation resumed for its mode.
//   - UpdatedAt: bumped on every appended message.
type Conversation struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_user_convs,priority:1"`
	ProfileID string    `json:"profile_id" gorm:"type:char(36);not null;index"`
	Mode      Mode      `json:"mode"       gorm:"type:varchar(32);not null;index:idx_user_convs,priority:2"`
	Subject   string    `json:"subject,omitempty" gorm:"type:varchar(128);not null;default:''"`
	Topic     string    `json:"topic,omitempty"   gorm:"type:varchar(255);not null;default:''"`
	Title     *string   `json:"title"      gorm:"type:varchar(255)"`
	IsActive  bool      `json:"is_active"  gorm:"not null;default:true;index:idx_user_convs,priority:3"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Conversation.
func (Conversation) TableName() string { return "conversations" }

// Message is a single turn inside a conversation. Messages are append-only
// and only disappear when their conversation is deleted.
type Message struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	ConversationID string    `json:"conversation_id" gorm:"type:char(36);not null;index:idx_conv_msgs,priority:1"`
	Role           string    `json:"role"            gorm:"type:varchar(16);not null;check:role IN ('user','assistant','system')"`
	Content        string    `json:"content"         gorm:"type:text;not null"`
	Tokens         *int      `json:"tokens,omitempty"`
	CreatedAt      time.Time `json:"created_at"      gorm:"index:idx_conv_msgs,priority:2"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// Feedback is a user rating (+1 / -1) of an assistant message. One entry per
// (message, user).
type Feedback struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	MessageID string    `json:"message_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_feedback_message_user"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index;uniqueIndex:ux_feedback_message_user"`
	Value     int       `json:"value"      gorm:"not null;check:value IN (-1,1)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Feedback.
func (Feedback) TableName() string { return "feedback" }
