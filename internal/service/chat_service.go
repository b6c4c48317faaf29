package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"support_chat_backend/internal/model"
	"support_chat_backend/internal/reply"
	"support_chat_backend/internal/repository"
	"support_chat_backend/internal/util"
	"support_chat_backend/pkg/logger"
	"support_chat_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRecentLimit is how many persisted messages are read per reply.
const DefaultRecentLimit = 20

// SendResult is what a customer gets back for one message.
type SendResult struct {
	Reply     string
	SessionID string
	Outcome   reply.Outcome
}

type ChatService struct {
	ChatRepo   *repository.ChatRepository
	FetchLimit int
	Provider   string

	engine atomic.Pointer[reply.Engine]
	locks  keyedMutex
}

func NewChatService(chatRepo *repository.ChatRepository, engine *reply.Engine, fetchLimit int, provider string) *ChatService {
	if fetchLimit <= 0 {
		fetchLimit = DefaultRecentLimit
	}
	if provider == "" {
		provider = "none"
	}
	s := &ChatService{ChatRepo: chatRepo, FetchLimit: fetchLimit, Provider: provider}
	s.engine.Store(engine)
	return s
}

// SetEngine swaps the reply engine. Requests already running keep the old one.
func (s *ChatService) SetEngine(e *reply.Engine) {
	s.engine.Store(e)
}

func (s *ChatService) Engine() *reply.Engine {
	return s.engine.Load()
}

func (s *ChatService) CreateConversation(ctx context.Context, metadata *string) (*model.Conversation, error) {
	conv := &model.Conversation{Metadata: metadata}
	if err := s.ChatRepo.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// GetConversation loads a conversation with its messages in order.
func (s *ChatService) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	conv, err := s.ChatRepo.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	msgs, err := s.ChatRepo.GetMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	conv.Messages = msgs
	return conv, nil
}

// GetHistory returns all messages of a session. An unknown session has no
// messages and is not an error.
func (s *ChatService) GetHistory(ctx context.Context, sessionID string) ([]model.Message, error) {
	conv, err := s.GetConversation(ctx, sessionID)
	if errors.Is(err, util.ErrConversationNotFound) {
		return []model.Message{}, nil
	}
	if err != nil {
		return nil, err
	}
	return conv.Messages, nil
}

// GetOrCreateConversation returns the session's conversation, or a new one
// when sessionID is empty or unknown.
func (s *ChatService) GetOrCreateConversation(ctx context.Context, sessionID string) (*model.Conversation, error) {
	if sessionID != "" {
		if _, err := uuid.Parse(sessionID); err != nil {
			return nil, util.ErrInvalidSessionID
		}
		conv, err := s.ChatRepo.GetConversation(ctx, sessionID)
		if err == nil {
			return conv, nil
		}
		if !errors.Is(err, util.ErrConversationNotFound) {
			return nil, err
		}
	}
	return s.CreateConversation(ctx, nil)
}

func (s *ChatService) AddMessage(ctx context.Context, convID string, sender reply.Sender, text string, tokenCount *int) (*model.Message, error) {
	msg := &model.Message{
		ConversationID: convID,
		Sender:         string(sender),
		Text:           text,
		TokenCount:     tokenCount,
	}
	if err := s.ChatRepo.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *ChatService) GetRecentMessages(ctx context.Context, convID string, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.ChatRepo.GetRecentMessages(ctx, convID, limit)
}

// SendMessage stores the customer's message, generates a reply and stores
// it. Messages of one conversation are handled one at a time.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, text string) (*SendResult, error) {
	conv, err := s.GetOrCreateConversation(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(conv.ID)
	defer unlock()

	userMsg, err := s.AddMessage(ctx, conv.ID, reply.SenderUser, text, nil)
	if err != nil {
		return nil, err
	}

	recent, err := s.GetRecentMessages(ctx, conv.ID, s.FetchLimit)
	if err != nil {
		return nil, err
	}
	history := model.ToReplyMessages(withoutMessage(recent, userMsg.ID))

	start := time.Now()
	res, err := s.Engine().GenerateReply(ctx, text, history)
	if err != nil {
		return nil, err
	}
	latency := time.Since(start)

	if _, err := s.AddMessage(ctx, conv.ID, reply.SenderAI, res.Reply, res.TokensUsed); err != nil {
		return nil, err
	}

	s.record(conv.ID, res, latency)
	return &SendResult{Reply: res.Reply, SessionID: conv.ID, Outcome: res.Outcome}, nil
}

func (s *ChatService) record(convID string, res reply.Result, latency time.Duration) {
	monitoring.ReplyOutcomes.WithLabelValues(string(res.Outcome), res.RejectedBy).Inc()

	fields := []zap.Field{
		zap.String("conversation_id", convID),
		zap.String("outcome", string(res.Outcome)),
		zap.String("provider", s.Provider),
		zap.Duration("latency", latency),
	}
	if res.TokensUsed != nil {
		fields = append(fields, zap.Int("tokens_used", *res.TokensUsed))
	}
	if res.RejectedBy != "" {
		fields = append(fields, zap.String("rule", res.RejectedBy))
	}
	logger.Log.Info("reply generated", fields...)
}

// withoutMessage drops the message with the given ID. The engine adds the
// current message as the final user turn itself.
func withoutMessage(msgs []model.Message, id string) []model.Message {
	out := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}

// keyedMutex serializes work per key. Entries are dropped once no goroutine
// holds or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
