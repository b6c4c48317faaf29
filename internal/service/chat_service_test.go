package service

import (
	"context"
	"sync"
	"testing"

	"support_chat_backend/internal/config"
	"support_chat_backend/internal/model"
	"support_chat_backend/internal/reply"
	"support_chat_backend/internal/repository"
	"support_chat_backend/internal/util"
	"support_chat_backend/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type recordingClient struct {
	mu       sync.Mutex
	requests []reply.CompletionRequest
	text     string
}

func (c *recordingClient) Complete(ctx context.Context, req reply.CompletionRequest) (reply.Completion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	tokens := 42
	return reply.Completion{Text: c.text, TokensUsed: &tokens}, nil
}

func (c *recordingClient) last() reply.CompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[len(c.requests)-1]
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitDB(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, false, true)
	require.NoError(t, err)
	return db
}

func newChatService(t *testing.T, client reply.Client) *ChatService {
	t.Helper()
	repo := repository.NewChatRepository(newTestDB(t), nil)
	return NewChatService(repo, reply.NewEngine(client, reply.DefaultConfig()), 0, "stub")
}

const acceptedText = "Standard shipping takes five to seven business days."

func TestSendMessage_WithoutProviderUsesCannedReply(t *testing.T) {
	ctx := context.Background()
	svc := newChatService(t, nil)

	res, err := svc.SendMessage(ctx, "", "What are your shipping options?")
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, reply.OutcomeNoProvider, res.Outcome)
	assert.Contains(t, res.Reply, "Standard Shipping")

	msgs, err := svc.GetHistory(ctx, res.SessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Sender)
	assert.Equal(t, "What are your shipping options?", msgs[0].Text)
	assert.Equal(t, "ai", msgs[1].Sender)
	assert.Equal(t, res.Reply, msgs[1].Text)
	assert.Nil(t, msgs[1].TokenCount)
}

func TestSendMessage_HistoryExcludesCurrentMessage(t *testing.T) {
	ctx := context.Background()
	client := &recordingClient{text: acceptedText}
	svc := newChatService(t, client)

	first, err := svc.SendMessage(ctx, "", "How long does shipping take?")
	require.NoError(t, err)
	assert.Equal(t, reply.OutcomeAccepted, first.Outcome)
	assert.Empty(t, client.last().Turns)

	second, err := svc.SendMessage(ctx, first.SessionID, "And express?")
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	req := client.last()
	assert.Equal(t, "And express?", req.UserMessage)
	assert.Equal(t, []reply.Turn{
		{Role: reply.RoleUser, Text: "How long does shipping take?"},
		{Role: reply.RoleAssistant, Text: acceptedText},
	}, req.Turns)

	msgs, err := svc.GetHistory(ctx, first.SessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	require.NotNil(t, msgs[3].TokenCount)
	assert.Equal(t, 42, *msgs[3].TokenCount)
}

func TestSendMessage_UnknownSessionStartsNewConversation(t *testing.T) {
	svc := newChatService(t, nil)

	unknown := uuid.NewString()
	res, err := svc.SendMessage(context.Background(), unknown, "hello")
	require.NoError(t, err)
	assert.NotEqual(t, unknown, res.SessionID)
	assert.Equal(t, reply.GreetingReply, res.Reply)
}

func TestSendMessage_InvalidSessionID(t *testing.T) {
	svc := newChatService(t, nil)

	_, err := svc.SendMessage(context.Background(), "not-a-uuid", "hello")
	assert.ErrorIs(t, err, util.ErrInvalidSessionID)
}

func TestGetHistory_UnknownSessionIsEmpty(t *testing.T) {
	svc := newChatService(t, nil)

	msgs, err := svc.GetHistory(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestCreateConversation_Metadata(t *testing.T) {
	ctx := context.Background()
	svc := newChatService(t, nil)
	meta := `{"channel":"web"}`

	conv, err := svc.CreateConversation(ctx, &meta)
	require.NoError(t, err)

	got, err := svc.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Metadata)
	assert.Equal(t, meta, *got.Metadata)
	assert.Empty(t, got.Messages)
}

func TestSendMessage_SerializedPerConversation(t *testing.T) {
	ctx := context.Background()
	client := &recordingClient{text: acceptedText}
	svc := newChatService(t, client)

	conv, err := svc.CreateConversation(ctx, nil)
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := svc.SendMessage(ctx, conv.ID, "Do you ship abroad?")
			return err
		})
	}
	require.NoError(t, g.Wait())

	msgs, err := svc.GetHistory(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 16)
	for i, m := range msgs {
		want := "user"
		if i%2 == 1 {
			want = "ai"
		}
		assert.Equal(t, want, m.Sender, "message %d", i)
		assert.EqualValues(t, i+1, m.SeqID)
	}
	assert.Zero(t, svc.locks.size())
}

func TestSetEngine(t *testing.T) {
	ctx := context.Background()
	svc := newChatService(t, nil)

	client := &recordingClient{text: acceptedText}
	svc.SetEngine(reply.NewEngine(client, reply.DefaultConfig()))

	res, err := svc.SendMessage(ctx, "", "How long does shipping take?")
	require.NoError(t, err)
	assert.Equal(t, acceptedText, res.Reply)
	assert.Len(t, client.requests, 1)
}

func TestWithoutMessage(t *testing.T) {
	msgs := []model.Message{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	assert.Equal(t, []model.Message{{ID: "a"}, {ID: "c"}}, withoutMessage(msgs, "b"))
	assert.Len(t, withoutMessage(msgs, "x"), 3)
}
