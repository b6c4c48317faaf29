package util

import (
	"net/http"

	"support_chat_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope of the non-chat endpoints.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorBody is the error shape of the chat endpoints.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string `json:"message"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err), zap.String("path", c.FullPath()))
	InternalServerError(c)
}

// ChatError writes {"error":{"message":...}} and aborts the chain.
func ChatError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorBody{Error: ErrorDetail{Message: message}})
}

func ChatBadRequest(c *gin.Context, message string) {
	ChatError(c, http.StatusBadRequest, message)
}

// ChatInternalError logs err and answers with a generic 500.
func ChatInternalError(c *gin.Context, err error) {
	logger.Log.Error("chat request failed", zap.Error(err), zap.String("path", c.FullPath()))
	ChatError(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.")
}
