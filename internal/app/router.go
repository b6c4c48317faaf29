package app

import (
	"fmt"
	"net/http"
	"time"

	"support_chat_backend/docs"
	"support_chat_backend/internal/config"
	"support_chat_backend/internal/util"
	"support_chat_backend/pkg/monitoring"
	"support_chat_backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const rateLimitedMessage = "Too many requests. Please wait a moment."

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	api := router.Group("/api")
	{
		chat := api.Group("/chat")
		chat.POST("/message", messageLimiter(cfg.RateLimit), c.chat.SendMessage)
		chat.GET("/history/:sessionId", c.chat.GetHistory)
		chat.POST("/session", c.chat.CreateSession)

		api.GET("/knowledge", c.knowledge.ListKnowledge)
	}

	router.NoRoute(notFound)
}

func messageLimiter(cfg config.RateLimitConfig) gin.HandlerFunc {
	window := time.Duration(cfg.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	return security.RateLimiter(cfg.MaxRequests, window, func(c *gin.Context) {
		util.ChatError(c, http.StatusTooManyRequests, rateLimitedMessage)
	})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   "Not Found",
		"message": fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path),
	})
}
