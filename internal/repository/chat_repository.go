package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"support_chat_backend/internal/model"
	"support_chat_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	maxCacheMessages = 50
	recentCacheTTL   = 24 * time.Hour
)

// ErrConversationNotFound is returned when the conversation row is missing.
var ErrConversationNotFound = util.ErrConversationNotFound

type ChatRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewChatRepository wires the message store. rdb may be nil, in which case
// every read goes to the database.
func NewChatRepository(db *gorm.DB, rdb *redis.Client) *ChatRepository {
	return &ChatRepository{DB: db, Redis: rdb}
}

func recentKey(convID string) string {
	return fmt.Sprintf("chat:recent:%s", convID)
}

func (r *ChatRepository) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	return r.DB.WithContext(ctx).Create(conv).Error
}

func (r *ChatRepository) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.DB.WithContext(ctx).First(&conv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// AppendMessage stores msg with the next sequence number of its conversation
// and bumps the conversation's updated_at in the same transaction. The
// recent-window cache is updated afterwards on a best-effort basis.
func (r *ChatRepository) AppendMessage(ctx context.Context, msg *model.Message) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now()
		}
		res := tx.Model(&model.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("updated_at", msg.CreatedAt)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConversationNotFound
		}

		var last uint64
		if err := tx.Model(&model.Message{}).
			Where("conversation_id = ?", msg.ConversationID).
			Select("COALESCE(MAX(seq_id), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		msg.SeqID = last + 1
		return tx.Create(msg).Error
	})
	if err != nil {
		return err
	}

	r.cacheMessage(ctx, msg)
	return nil
}

func (r *ChatRepository) cacheMessage(ctx context.Context, msg *model.Message) {
	if r.Redis == nil {
		return
	}
	key := recentKey(msg.ConversationID)
	data, _ := json.Marshal(msg)

	pipe := r.Redis.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, maxCacheMessages-1)
	pipe.Expire(ctx, key, recentCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		// A partial write would leave a gap in the window.
		r.Redis.Del(context.Background(), key)
	}
}

// GetMessages returns the whole conversation in chronological order.
func (r *ChatRepository) GetMessages(ctx context.Context, convID string) ([]model.Message, error) {
	var msgs []model.Message
	err := r.DB.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("seq_id ASC").
		Find(&msgs).Error
	return msgs, err
}

// GetRecentMessages returns at most limit of the newest messages, oldest first.
func (r *ChatRepository) GetRecentMessages(ctx context.Context, convID string, limit int) ([]model.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	if limit <= maxCacheMessages {
		if msgs, ok := r.recentFromCache(ctx, convID, limit); ok {
			return msgs, nil
		}
	}

	var msgs []model.Message
	err := r.DB.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("seq_id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	r.fillCache(ctx, convID, msgs)

	reverse(msgs)
	return msgs, nil
}

func (r *ChatRepository) recentFromCache(ctx context.Context, convID string, limit int) ([]model.Message, bool) {
	if r.Redis == nil {
		return nil, false
	}
	cached, err := r.Redis.LRange(ctx, recentKey(convID), 0, int64(limit-1)).Result()
	if err != nil || len(cached) < limit {
		return nil, false
	}

	msgs := make([]model.Message, 0, len(cached))
	for _, item := range cached {
		var m model.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, false
		}
		msgs = append(msgs, m)
	}
	reverse(msgs)
	return msgs, true
}

// fillCache replaces the cached window with newestFirst.
func (r *ChatRepository) fillCache(ctx context.Context, convID string, newestFirst []model.Message) {
	if r.Redis == nil || len(newestFirst) == 0 {
		return
	}
	key := recentKey(convID)
	values := make([]interface{}, 0, len(newestFirst))
	for i := range newestFirst {
		if i == maxCacheMessages {
			break
		}
		data, _ := json.Marshal(&newestFirst[i])
		values = append(values, data)
	}

	pipe := r.Redis.TxPipeline()
	pipe.Del(ctx, key)
	pipe.RPush(ctx, key, values...)
	pipe.Expire(ctx, key, recentCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		r.Redis.Del(context.Background(), key)
	}
}

func reverse(msgs []model.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
