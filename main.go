// @title TechNest Support Chat API
// @version 1.0
// @description Customer support chat backend for the TechNest store.

// @contact.name TechNest Support
// @contact.email support@technest.com

// @host localhost:8080
// @BasePath /

package main

import (
	"flag"
	"log"

	"support_chat_backend/internal/app"
	"support_chat_backend/internal/config"
	"support_chat_backend/pkg/logger"
)

func main() {
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	migrate := flag.Bool("migrate", false, "run database migrations on start, even in release mode")
	seed := flag.Bool("seed", false, "load the knowledge seed file into an empty knowledge base")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly || *seed
	cfg.MigrateOnly = *migrateOnly
	cfg.Seed = *seed

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Database migration finished, exiting")
		return
	}

	application.Run()
}
