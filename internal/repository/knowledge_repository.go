package repository

import (
	"context"

	"support_chat_backend/internal/model"

	"gorm.io/gorm"
)

type KnowledgeRepository struct {
	DB *gorm.DB
}

func NewKnowledgeRepository(db *gorm.DB) *KnowledgeRepository {
	return &KnowledgeRepository{DB: db}
}

// List returns all items by priority descending, then category.
func (r *KnowledgeRepository) List(ctx context.Context) ([]model.KnowledgeItem, error) {
	var items []model.KnowledgeItem
	err := r.DB.WithContext(ctx).
		Order("priority DESC").
		Order("category ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *KnowledgeRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.KnowledgeItem{}).Count(&n).Error
	return n, err
}

// ReplaceAll swaps the whole knowledge base in one transaction.
func (r *KnowledgeRepository) ReplaceAll(ctx context.Context, items []model.KnowledgeItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("1 = 1").Delete(&model.KnowledgeItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}
