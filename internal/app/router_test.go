package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"support_chat_backend/internal/config"
	"support_chat_backend/internal/model"
	"support_chat_backend/internal/reply"
	"support_chat_backend/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
server:
  mode: test
database:
  driver: sqlite
  path: ":memory:"
llm:
  provider: none
rate_limit:
  max_requests: %d
  window_minutes: 1
cors:
  allowed_origins: ["http://localhost:5173"]
`

func loadTestConfig(t *testing.T, maxRequests int) *config.Config {
	t.Helper()
	dir := t.TempDir()
	body := fmt.Sprintf(testConfig, maxRequests)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)
	return cfg
}

func newTestApp(t *testing.T, maxRequests int) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := loadTestConfig(t, maxRequests)
	db, err := database.InitDB(&cfg.Database, false, true)
	require.NoError(t, err)
	a, err := newApp(cfg, db, nil, nil)
	require.NoError(t, err)
	return a
}

func do(a *App, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, w)
	e, ok := body["error"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return e["message"].(string)
}

func TestChatFlow(t *testing.T) {
	a := newTestApp(t, 100)

	w := do(a, http.MethodPost, "/api/chat/message", `{"message":"  What is your return policy?  "}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	sessionID := body["sessionId"].(string)
	_, err := uuid.Parse(sessionID)
	require.NoError(t, err)
	assert.Contains(t, body["reply"], "30-day")

	w = do(a, http.MethodPost, "/api/chat/message", fmt.Sprintf(`{"message":"hi","sessionId":%q}`, sessionID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, reply.GreetingReply, decode(t, w)["reply"])

	w = do(a, http.MethodGet, "/api/chat/history/"+sessionID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		SessionID string `json:"sessionId"`
		Messages  []struct {
			ID        string `json:"id"`
			Sender    string `json:"sender"`
			Text      string `json:"text"`
			Timestamp string `json:"timestamp"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Equal(t, sessionID, history.SessionID)
	require.Len(t, history.Messages, 4)
	assert.Equal(t, []string{"user", "ai", "user", "ai"}, []string{
		history.Messages[0].Sender, history.Messages[1].Sender, history.Messages[2].Sender, history.Messages[3].Sender,
	})
	assert.Equal(t, "What is your return policy?", history.Messages[0].Text)
	for _, m := range history.Messages {
		_, err := time.Parse(time.RFC3339Nano, m.Timestamp)
		assert.NoError(t, err)
	}
}

func TestHistory_UnknownSession(t *testing.T) {
	a := newTestApp(t, 100)
	id := uuid.NewString()

	w := do(a, http.MethodGet, "/api/chat/history/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"sessionId":%q,"messages":[]}`, id), w.Body.String())
}

func TestCreateSession(t *testing.T) {
	a := newTestApp(t, 100)

	w := do(a, http.MethodPost, "/api/chat/session", "")
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	_, err := uuid.Parse(body["sessionId"].(string))
	assert.NoError(t, err)
	_, err = time.Parse(time.RFC3339Nano, body["createdAt"].(string))
	assert.NoError(t, err)
}

func TestSendMessage_Validation(t *testing.T) {
	a := newTestApp(t, 100)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing message", `{}`, "Message cannot be empty"},
		{"empty message", `{"message":""}`, "Message cannot be empty"},
		{"whitespace message", `{"message":"   "}`, "Message cannot be empty"},
		{"too long", fmt.Sprintf(`{"message":%q}`, strings.Repeat("a", 4001)), "Message cannot exceed 4000 characters"},
		{"bad session", `{"message":"hi","sessionId":"abc"}`, "Invalid session ID"},
		{"malformed json", `{"message":`, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(a, http.MethodPost, "/api/chat/message", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, errorMessage(t, w))
		})
	}

	w := do(a, http.MethodPost, "/api/chat/message", fmt.Sprintf(`{"message":%q}`, strings.Repeat("é", 4000)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSendMessage_RateLimited(t *testing.T) {
	a := newTestApp(t, 3)

	for i := 0; i < 3; i++ {
		w := do(a, http.MethodPost, "/api/chat/message", `{"message":"hello"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := do(a, http.MethodPost, "/api/chat/message", `{"message":"hello"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, rateLimitedMessage, errorMessage(t, w))

	// Other endpoints are not limited.
	assert.Equal(t, http.StatusCreated, do(a, http.MethodPost, "/api/chat/session", "").Code)
}

func TestNotFound(t *testing.T) {
	a := newTestApp(t, 100)

	w := do(a, http.MethodDelete, "/api/chat/everything", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not Found","message":"Route DELETE /api/chat/everything not found"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	a := newTestApp(t, 100)

	w := do(a, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, map[string]interface{}{"database": "up"}, body["components"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestKnowledgeEndpoint(t *testing.T) {
	a := newTestApp(t, 100)
	require.NoError(t, a.services.knowledge.Replace(context.Background(), []model.KnowledgeItem{
		{Category: "warranty", Question: "Warranty?", Answer: "1 year.", Priority: 1},
		{Category: "shipping", Question: "Free shipping?", Answer: "Over $50.", Priority: 10},
	}))

	w := do(a, http.MethodGet, "/api/knowledge", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Code int                   `json:"code"`
		Data []model.KnowledgeItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "shipping", resp.Data[0].Category)
}

func TestMetricsAndDocs(t *testing.T) {
	a := newTestApp(t, 100)
	require.Equal(t, http.StatusOK, do(a, http.MethodPost, "/api/chat/message", `{"message":"hello"}`).Code)

	w := do(a, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `chat_reply_outcomes_total{outcome="no_provider"`)

	w = do(a, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/chat/message")
}

func TestCORSPreflight(t *testing.T) {
	a := newTestApp(t, 100)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat/message", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestApplyConfig_SwapsEngine(t *testing.T) {
	a := newTestApp(t, 100)
	before := a.services.chat.Engine()

	next := loadTestConfig(t, 100)
	next.Reply.HistoryWindow = 4
	a.ApplyConfig(next)

	after := a.services.chat.Engine()
	assert.NotSame(t, before, after)
	assert.Equal(t, 4, after.Config().HistoryWindow)

	broken := loadTestConfig(t, 100)
	broken.Reply.OutputFilter.CorruptionPatterns = []string{"("}
	a.ApplyConfig(broken)
	assert.Same(t, after, a.services.chat.Engine())
}
