package service

import (
	"context"
	"encoding/json"
	"time"

	"support_chat_backend/internal/model"
	"support_chat_backend/internal/reply"
	"support_chat_backend/internal/repository"
	"support_chat_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const knowledgeCacheKey = "knowledge:items"

// KnowledgeService serves the grounding items to the reply engine. Reads go
// through Redis when it is configured; concurrent misses share one query.
type KnowledgeService struct {
	Repo  *repository.KnowledgeRepository
	Redis *redis.Client
	TTL   time.Duration

	group singleflight.Group
}

func NewKnowledgeService(repo *repository.KnowledgeRepository, rdb *redis.Client, ttl time.Duration) *KnowledgeService {
	return &KnowledgeService{Repo: repo, Redis: rdb, TTL: ttl}
}

// KnowledgeItems implements reply.KnowledgeProvider.
func (s *KnowledgeService) KnowledgeItems(ctx context.Context) ([]reply.KnowledgeItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]reply.KnowledgeItem, len(items))
	for i, item := range items {
		out[i] = item.ToReply()
	}
	return out, nil
}

// List returns the stored items in prompt order.
func (s *KnowledgeService) List(ctx context.Context) ([]model.KnowledgeItem, error) {
	if items, ok := s.fromCache(ctx); ok {
		return items, nil
	}

	v, err, _ := s.group.Do(knowledgeCacheKey, func() (interface{}, error) {
		items, err := s.Repo.List(ctx)
		if err != nil {
			return nil, err
		}
		s.toCache(ctx, items)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.KnowledgeItem), nil
}

// Replace swaps the whole knowledge base and drops the cached copy.
func (s *KnowledgeService) Replace(ctx context.Context, items []model.KnowledgeItem) error {
	if err := s.Repo.ReplaceAll(ctx, items); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

func (s *KnowledgeService) Invalidate(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, knowledgeCacheKey).Err(); err != nil {
		logger.Log.Warn("knowledge cache invalidation failed", zap.Error(err))
	}
}

func (s *KnowledgeService) fromCache(ctx context.Context) ([]model.KnowledgeItem, bool) {
	if s.Redis == nil || s.TTL <= 0 {
		return nil, false
	}
	data, err := s.Redis.Get(ctx, knowledgeCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("knowledge cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var items []model.KnowledgeItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (s *KnowledgeService) toCache(ctx context.Context, items []model.KnowledgeItem) {
	if s.Redis == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, knowledgeCacheKey, data, s.TTL).Err(); err != nil {
		logger.Log.Warn("knowledge cache write failed", zap.Error(err))
	}
}
