package model

import "support_chat_backend/internal/reply"

// KnowledgeItem is an FAQ or store policy entry used to ground replies.
type KnowledgeItem struct {
	BaseModel
	Category string `gorm:"size:50;index;not null" json:"category" yaml:"category"`
	Question string `gorm:"type:text;not null" json:"question" yaml:"question"`
	Answer   string `gorm:"type:text;not null" json:"answer" yaml:"answer"`
	Priority int    `gorm:"default:0;index" json:"priority" yaml:"priority"`
}

func (KnowledgeItem) TableName() string {
	return "knowledge_items"
}

func (k KnowledgeItem) ToReply() reply.KnowledgeItem {
	return reply.KnowledgeItem{
		Category: k.Category,
		Question: k.Question,
		Answer:   k.Answer,
		Priority: k.Priority,
	}
}
