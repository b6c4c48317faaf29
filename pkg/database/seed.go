package database

import (
	"context"
	"fmt"
	"os"

	"support_chat_backend/internal/model"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type seedFile struct {
	Items []model.KnowledgeItem `yaml:"items"`
}

// LoadKnowledgeSeed parses a knowledge YAML file.
func LoadKnowledgeSeed(path string) ([]model.KnowledgeItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, item := range f.Items {
		if item.Category == "" || item.Question == "" || item.Answer == "" {
			return nil, fmt.Errorf("%s: item %d is missing category, question or answer", path, i)
		}
	}
	return f.Items, nil
}

// SeedKnowledge loads the seed file into an empty knowledge table. It
// returns the number of inserted rows; a populated table is left untouched.
func SeedKnowledge(ctx context.Context, db *gorm.DB, path string) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&model.KnowledgeItem{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	items, err := LoadKnowledgeSeed(path)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}
	if err := db.WithContext(ctx).Create(&items).Error; err != nil {
		return 0, err
	}
	return len(items), nil
}
