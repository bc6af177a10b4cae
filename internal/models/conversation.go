package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultConversationTitle = "New Conversation"

type Conversation struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID *uuid.UUID `json:"projectId"` // nil for general chat
	UserID    string     `json:"userId"`
	Title     *string    `json:"title,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ConversationWithMessages is what a conversation read returns.
type ConversationWithMessages struct {
	Conversation
	Messages []*Message `json:"messages"`
}

type UpdateConversation struct {
	ID        uuid.UUID
	Title     Field[*string]
	UpdatedAt Field[time.Time]
}

func (u *UpdateConversation) Apply(c *Conversation) {
	u.Title.Apply(&c.Title)
	u.UpdatedAt.Apply(&c.UpdatedAt)
}

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
)

func (r MessageRole) Valid() bool {
	switch r {
	case MessageRoleUser, MessageRoleAssistant, MessageRoleSystem:
		return true
	}
	return false
}

type MessageMetadata struct {
	Model          *string `json:"model,omitempty"`
	TokensUsed     *int64  `json:"tokensUsed,omitempty"`
	ProcessingTime *int64  `json:"processingTime,omitempty"` // milliseconds
}

// Message is immutable once created.
type Message struct {
	ID             uuid.UUID        `json:"id"`
	ConversationID uuid.UUID        `json:"conversationId"`
	Role           MessageRole      `json:"role"`
	Content        string           `json:"content"`
	Metadata       *MessageMetadata `json:"metadata,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}
