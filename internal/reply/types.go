// Package reply turns a customer message plus stored conversation history into
// a reply that is safe to show. It calls an LLM when one is configured and
// falls back to deterministic canned answers whenever the provider is missing,
// fails, or produces text that does not pass the output filter.
package reply

import (
	"context"
	"time"
)

// Sender identifies who authored a persisted chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Role is the two-role scheme used for model input.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is a persisted, immutable message of a conversation.
type ChatMessage struct {
	ID             string
	ConversationID string
	Sender         Sender
	Text           string
	CreatedAt      time.Time
	TokenCount     *int
}

// KnowledgeItem is one FAQ / store-policy entry used for prompt grounding.
type KnowledgeItem struct {
	Category string
	Question string
	Answer   string
	Priority int
}

// Turn is one role-tagged unit of conversation fed to the model.
type Turn struct {
	Role Role
	Text string
}

// PromptContext is built per request and never persisted.
type PromptContext struct {
	SystemPrompt string
	Turns        []Turn
}

// CompletionRequest is everything a provider adapter needs for one call.
type CompletionRequest struct {
	SystemPrompt string
	Turns        []Turn
	UserMessage  string
	MaxTokens    int
	Temperature  float64
}

// Completion is the raw provider answer.
type Completion struct {
	Text       string
	TokensUsed *int
}

// Client is the single capability every LLM provider adapter implements.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// KnowledgeProvider returns the current knowledge items, unordered.
type KnowledgeProvider interface {
	KnowledgeItems(ctx context.Context) ([]KnowledgeItem, error)
}

// Outcome records which path produced the final reply.
type Outcome string

const (
	OutcomeAccepted             Outcome = "accepted"
	OutcomeNoProvider           Outcome = "no_provider"
	OutcomeInputRejected        Outcome = "input_rejected"
	OutcomeOutputRejected       Outcome = "output_rejected"
	OutcomeProviderRateLimited  Outcome = "provider_rate_limited"
	OutcomeProviderUnauthorized Outcome = "provider_unauthorized"
	OutcomeProviderUnknown      Outcome = "provider_unknown"
)

// Result is the produced API of the engine. TokensUsed is only set when the
// model output was accepted.
type Result struct {
	Reply      string
	TokensUsed *int
	Outcome    Outcome
	// RejectedBy names the output rule that fired, if any.
	RejectedBy string
}
