package controller

import (
	"context"
	"net/http"
	"time"

	"support_chat_backend/internal/util"
	"support_chat_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{DB: db, Redis: rdb}
}

// @Summary Health check
// @Description Reports service status; 503 when the database is unreachable
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Service:    util.ServiceName,
		Components: map[string]string{"database": "up"},
	}
	code := http.StatusOK

	sqlDB, err := c.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(pingCtx)
	}
	if err != nil {
		logger.Log.Warn("health check: database unavailable", zap.Error(err))
		resp.Status = "error"
		resp.Components["database"] = "down"
		code = http.StatusServiceUnavailable
	}

	// A Redis outage only degrades the status.
	if c.Redis != nil {
		resp.Components["redis"] = "up"
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			resp.Components["redis"] = "down"
			if code == http.StatusOK {
				resp.Status = "degraded"
			}
		}
	}

	ctx.JSON(code, resp)
}
