// Replaces the whole knowledge base with the entries of a YAML seed file.
// Unlike the -seed flag of the server, existing entries are dropped first.
//
// Usage: go run scripts/seed_knowledge.go [-config configs] [-file configs/knowledge.yaml]

package main

import (
	"context"
	"flag"
	"log"

	"support_chat_backend/internal/config"
	"support_chat_backend/internal/repository"
	"support_chat_backend/internal/service"
	"support_chat_backend/pkg/database"
	"support_chat_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	file := flag.String("file", "", "seed file; defaults to knowledge.seed_file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	path := *file
	if path == "" {
		path = cfg.Knowledge.SeedFile
	}
	items, err := database.LoadKnowledgeSeed(path)
	if err != nil {
		logger.Log.Fatal("Failed to read seed file", zap.String("file", path), zap.Error(err))
	}

	db, err := database.InitDB(&cfg.Database, false, true)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, knowledge cache not invalidated", zap.Error(err))
		rdb = nil
	}

	svc := service.NewKnowledgeService(repository.NewKnowledgeRepository(db), rdb, cfg.Knowledge.CacheTTL())
	if err := svc.Replace(context.Background(), items); err != nil {
		logger.Log.Fatal("Failed to replace knowledge base", zap.Error(err))
	}
	logger.Log.Info("Knowledge base replaced", zap.Int("items", len(items)), zap.String("file", path))
}
