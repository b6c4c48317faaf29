package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"support_chat_backend/internal/config"
	"support_chat_backend/internal/controller"
	"support_chat_backend/internal/llm"
	"support_chat_backend/internal/middleware"
	"support_chat_backend/internal/reply"
	"support_chat_backend/internal/repository"
	"support_chat_backend/internal/service"
	"support_chat_backend/pkg/configwatcher"
	"support_chat_backend/pkg/database"
	"support_chat_backend/pkg/logger"
	"support_chat_backend/pkg/monitoring"
	"support_chat_backend/pkg/security"
	"support_chat_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxBodyBytes = 1 << 20

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	LLM    reply.Client

	services        *services
	tracer          *sdktrace.TracerProvider
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	chat      *repository.ChatRepository
	knowledge *repository.KnowledgeRepository
}

type services struct {
	chat      *service.ChatService
	knowledge *service.KnowledgeService
}

type controllers struct {
	chat      *controller.ChatController
	knowledge *controller.KnowledgeController
	health    *controller.HealthController
}

// RegisterConfigCallback adds a function run after every successful config reload.
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig runs the reload callbacks with cfg.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		chat:      repository.NewChatRepository(db, rdb),
		knowledge: repository.NewKnowledgeRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) (*services, error) {
	knowledge := service.NewKnowledgeService(repos.knowledge, rdb, cfg.Knowledge.CacheTTL())
	engine, err := buildEngine(cfg, a.LLM, knowledge)
	if err != nil {
		return nil, err
	}
	return &services{
		chat:      service.NewChatService(repos.chat, engine, cfg.Reply.HistoryFetchLimit, cfg.LLM.Provider),
		knowledge: knowledge,
	}, nil
}

func (a *App) initControllers(s *services, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		chat:      controller.NewChatController(s.chat, cfg.Reply.MaxMessageLength),
		knowledge: controller.NewKnowledgeController(s.knowledge),
		health:    controller.NewHealthController(db, rdb),
	}
}

// buildEngine assembles the reply engine from the reply section of cfg.
func buildEngine(cfg *config.Config, client reply.Client, knowledge reply.KnowledgeProvider) (*reply.Engine, error) {
	rules, err := cfg.Reply.OutputFilter.Rules()
	if err != nil {
		return nil, err
	}
	return reply.NewEngine(client, cfg.EngineConfig(),
		reply.WithLogger(logger.Named("reply")),
		reply.WithKnowledge(knowledge),
		reply.WithInputFilter(cfg.Reply.InputFilter.Filter()),
		reply.WithOutputFilter(reply.NewOutputFilter(rules...)),
	), nil
}

// reloadReply swaps in an engine built from the new reply and llm call
// settings. Provider and credentials only change on restart.
func (a *App) reloadReply(cfg *config.Config) {
	if cfg.LLM.Provider != a.Config.LLM.Provider || cfg.LLM.APIKey != a.Config.LLM.APIKey {
		logger.Log.Warn("llm provider change requires a restart", zap.String("provider", a.Config.LLM.Provider))
	}
	engine, err := buildEngine(cfg, a.LLM, a.services.knowledge)
	if err != nil {
		logger.Log.Error("Rejected reply config reload", zap.Error(err))
		return
	}
	a.services.chat.SetEngine(engine)
	logger.Log.Info("Reply engine reloaded",
		zap.Int("history_window", cfg.Reply.HistoryWindow),
		zap.Int("max_tokens", cfg.LLM.MaxTokens))
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger.Named("http")))
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.BodyLimit(maxBodyBytes))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// newApp wires everything above the storage and provider clients.
func newApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client, client reply.Client) (*App, error) {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		LLM:    client,
	}

	repos := app.initRepositories(db, rdb)
	svcs, err := app.initServices(repos, cfg, rdb)
	if err != nil {
		return nil, err
	}
	app.services = svcs
	ctrls := app.initControllers(svcs, cfg, db, rdb)

	monitoring.Init()

	router := gin.New()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, cfg)

	app.RegisterConfigCallback(app.reloadReply)
	return app, nil
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")
	gin.SetMode(cfg.Server.Mode)

	migrate := cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	if cfg.Seed {
		n, err := database.SeedKnowledge(context.Background(), db, cfg.Knowledge.SeedFile)
		if err != nil {
			logger.Log.Fatal("Failed to seed knowledge base", zap.Error(err))
		}
		logger.Log.Info("Knowledge base seeded", zap.Int("items", n))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	client, err := llm.New(context.Background(), cfg.LLM)
	if err != nil {
		logger.Log.Fatal("Failed to initialize llm client", zap.Error(err))
	}
	if client == nil {
		logger.Log.Warn("No LLM provider configured, replies are canned", zap.String("provider", cfg.LLM.Provider))
	}

	app, err := newApp(cfg, db, rdb, client)
	if err != nil {
		logger.Log.Fatal("Failed to build application", zap.Error(err))
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("technest-support-chat", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if a.Config.File != "" {
		go func() {
			if err := configwatcher.WatchConfig(ctx, a.Config.File, configwatcher.DefaultDebounce, a.ApplyConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	a.Close(shutdownCtx)

	logger.Log.Info("Server exiting")
}

// Close releases the tracer, Redis and database handles.
func (a *App) Close(ctx context.Context) {
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
