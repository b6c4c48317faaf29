package model

import (
	"time"

	"support_chat_backend/internal/reply"

	"gorm.io/gorm"
)

// Conversation is one support chat session. UpdatedAt is bumped on every
// appended message.
type Conversation struct {
	UUIDBase
	Metadata *string   `gorm:"type:text" json:"metadata,omitempty"`
	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message is append-only. SeqID orders messages within a conversation even
// when two share a CreatedAt.
type Message struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ConversationID string    `gorm:"index:idx_conv_seq,priority:1;type:varchar(36);not null" json:"conversationId"`
	SeqID          uint64    `gorm:"index:idx_conv_seq,priority:2" json:"seqId"`
	Sender         string    `gorm:"size:8;not null" json:"sender"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	TokenCount     *int      `json:"tokenCount,omitempty"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = GenerateUUID()
	}
	return
}

func (m Message) ToReply() reply.ChatMessage {
	return reply.ChatMessage{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         reply.Sender(m.Sender),
		Text:           m.Text,
		CreatedAt:      m.CreatedAt,
		TokenCount:     m.TokenCount,
	}
}

func ToReplyMessages(msgs []Message) []reply.ChatMessage {
	out := make([]reply.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = m.ToReply()
	}
	return out
}
