package models

import (
	"time"

	"gorm.io/datatypes"
)

// MessageRole identifies the author of a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Conversation is an ordered log of chat turns owned by one user. The title
// is derived from the first message.
type Conversation struct {
	ID      string `gorm:"type:char(36);primaryKey"`
	OwnerID uint   `gorm:"index;not null"`
	Title   string `gorm:"size:255;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Messages []Message `gorm:"constraint:OnDelete:CASCADE"`
}

// Message is a single turn in a conversation. Messages are append-only and
// ordered by creation time.
type Message struct {
	ID             string      `gorm:"type:char(36);primaryKey"`
	ConversationID string      `gorm:"type:char(36);index;not null"`
	Role           MessageRole `gorm:"type:varchar(16);not null"`
	Content        string      `gorm:"type:text;not null"`

	Metadata datatypes.JSONMap

	CreatedAt time.Time
}

func (Conversation) TableName() string {
	return "conversations"
}

func (Message) TableName() string {
	return "messages"
}
