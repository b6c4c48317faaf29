package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"support_chat_backend/internal/model"
	"support_chat_backend/internal/service"
	"support_chat_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ChatController serves the customer chat widget.
type ChatController struct {
	ChatService *service.ChatService
	MaxLength   int
}

// SendMessageRequest is the body of POST /api/chat/message.
type SendMessageRequest struct {
	Message   *string `json:"message" example:"Do you ship internationally?"`
	SessionID string  `json:"sessionId" example:"3f2b8a9e-6a55-4c1e-9a57-0d7f3c2e41b0"`
}

type SendMessageResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
}

type HistoryMessage struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type HistoryResponse struct {
	SessionID string           `json:"sessionId"`
	Messages  []HistoryMessage `json:"messages"`
}

type SessionResponse struct {
	SessionID string `json:"sessionId"`
	CreatedAt string `json:"createdAt"`
}

func NewChatController(chatService *service.ChatService, maxLength int) *ChatController {
	if maxLength <= 0 {
		maxLength = util.MaxMessageLength
	}
	return &ChatController{ChatService: chatService, MaxLength: maxLength}
}

// SendMessage godoc
// @Summary Send a message
// @Description Stores the customer message and returns the support reply
// @Tags chat
// @Accept  json
// @Produce  json
// @Param   request body SendMessageRequest true "message and optional session"
// @Success 200 {object} SendMessageResponse
// @Failure 400 {object} util.ErrorBody
// @Failure 429 {object} util.ErrorBody
// @Router /api/chat/message [post]
func (ctrl *ChatController) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ChatBadRequest(c, "Invalid request body")
		return
	}

	text, err := ctrl.validate(req)
	if err != nil {
		util.ChatBadRequest(c, ctrl.validationMessage(err))
		return
	}

	res, err := ctrl.ChatService.SendMessage(c.Request.Context(), req.SessionID, text)
	if err != nil {
		if errors.Is(err, util.ErrInvalidSessionID) {
			util.ChatBadRequest(c, ctrl.validationMessage(err))
			return
		}
		util.ChatInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, SendMessageResponse{Reply: res.Reply, SessionID: res.SessionID})
}

// GetHistory godoc
// @Summary Conversation history
// @Description Returns every message of a session in order; unknown sessions have none
// @Tags chat
// @Produce  json
// @Param   sessionId path string true "session id"
// @Success 200 {object} HistoryResponse
// @Router /api/chat/history/{sessionId} [get]
func (ctrl *ChatController) GetHistory(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		util.ChatBadRequest(c, "Session ID required")
		return
	}

	msgs, err := ctrl.ChatService.GetHistory(c.Request.Context(), sessionID)
	if err != nil {
		util.ChatInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, HistoryResponse{SessionID: sessionID, Messages: toHistory(msgs)})
}

// CreateSession godoc
// @Summary Start a session
// @Tags chat
// @Produce  json
// @Success 201 {object} SessionResponse
// @Router /api/chat/session [post]
func (ctrl *ChatController) CreateSession(c *gin.Context) {
	conv, err := ctrl.ChatService.CreateConversation(c.Request.Context(), nil)
	if err != nil {
		util.ChatInternalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SessionResponse{
		SessionID: conv.ID,
		CreatedAt: conv.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

// validate returns the trimmed message. Length limits apply before trimming.
func (ctrl *ChatController) validate(req SendMessageRequest) (string, error) {
	if req.Message == nil {
		return "", util.ErrEmptyMessage
	}
	n := utf8.RuneCountInString(*req.Message)
	if n < util.MinMessageLength {
		return "", util.ErrEmptyMessage
	}
	if n > ctrl.MaxLength {
		return "", util.ErrMessageTooLong
	}
	text := strings.TrimSpace(*req.Message)
	if text == "" {
		return "", util.ErrEmptyMessage
	}
	return text, nil
}

func (ctrl *ChatController) validationMessage(err error) string {
	switch {
	case errors.Is(err, util.ErrEmptyMessage):
		return "Message cannot be empty"
	case errors.Is(err, util.ErrMessageTooLong):
		return fmt.Sprintf("Message cannot exceed %d characters", ctrl.MaxLength)
	case errors.Is(err, util.ErrInvalidSessionID):
		return "Invalid session ID"
	default:
		return err.Error()
	}
}

func toHistory(msgs []model.Message) []HistoryMessage {
	out := make([]HistoryMessage, len(msgs))
	for i, m := range msgs {
		out[i] = HistoryMessage{
			ID:        m.ID,
			Sender:    m.Sender,
			Text:      m.Text,
			Timestamp: m.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	}
	return out
}
