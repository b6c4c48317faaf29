package reply

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config holds the model call parameters of the engine.
type Config struct {
	HistoryWindow int
	MaxTokens     int
	Temperature   float64
	Timeout       time.Duration
}

func DefaultConfig() Config {
	return Config{
		HistoryWindow: DefaultHistoryWindow,
		MaxTokens:     250,
		Temperature:   0.7,
		Timeout:       20 * time.Second,
	}
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithKnowledge(k KnowledgeProvider) Option {
	return func(e *Engine) { e.knowledge = k }
}

func WithInputFilter(f InputFilter) Option {
	return func(e *Engine) { e.input = f }
}

func WithOutputFilter(f *OutputFilter) Option {
	return func(e *Engine) { e.output = f }
}

func WithCannedResponder(c *CannedResponder) Option {
	return func(e *Engine) { e.canned = c }
}

// Engine computes one reply per inbound message. It holds no mutable state
// and is safe for concurrent use; callers serialize per conversation.
type Engine struct {
	client    Client
	knowledge KnowledgeProvider
	cfg       Config
	input     InputFilter
	output    *OutputFilter
	canned    *CannedResponder
	log       *zap.Logger
}

// NewEngine builds an engine. A nil client makes every reply canned.
func NewEngine(client Client, cfg Config, opts ...Option) *Engine {
	def := DefaultConfig()
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = def.HistoryWindow
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	e := &Engine{
		client: client,
		cfg:    cfg,
		input:  DefaultInputFilter(),
		output: DefaultOutputFilter(),
		canned: NewCannedResponder(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Config() Config {
	return e.cfg
}

// GenerateReply returns a reply for userMessage given the prior persisted
// history of the conversation, which must not include userMessage itself.
// Provider failures and filter rejections resolve to a valid reply; the only
// error is ErrMalformedHistory.
func (e *Engine) GenerateReply(ctx context.Context, userMessage string, history []ChatMessage) (Result, error) {
	turns, err := WindowHistory(history, e.cfg.HistoryWindow)
	if err != nil {
		return Result{}, err
	}

	if e.input.Rejects(userMessage) {
		e.log.Debug("input rejected, using canned reply")
		return e.cannedResult(userMessage, OutcomeInputRejected, ""), nil
	}
	if e.client == nil {
		return e.cannedResult(userMessage, OutcomeNoProvider, ""), nil
	}

	req := CompletionRequest{
		SystemPrompt: SystemPrompt(e.knowledgeBlock(ctx)),
		Turns:        turns,
		UserMessage:  userMessage,
		MaxTokens:    e.cfg.MaxTokens,
		Temperature:  e.cfg.Temperature,
	}

	callCtx := ctx
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	completion, err := e.client.Complete(callCtx, req)
	if err != nil {
		return e.providerFailure(err), nil
	}

	text := strings.TrimSpace(completion.Text)
	if rule, ok := e.output.Check(text); !ok {
		e.log.Warn("model output rejected", zap.String("rule", rule), zap.Int("length", len(text)))
		return e.cannedResult(userMessage, OutcomeOutputRejected, rule), nil
	}

	return Result{Reply: text, TokensUsed: completion.TokensUsed, Outcome: OutcomeAccepted}, nil
}

func (e *Engine) knowledgeBlock(ctx context.Context) string {
	if e.knowledge == nil {
		return DefaultKnowledge
	}
	items, err := e.knowledge.KnowledgeItems(ctx)
	if err != nil {
		e.log.Warn("knowledge unavailable, using default block", zap.Error(err))
		return DefaultKnowledge
	}
	return FormatKnowledge(items)
}

func (e *Engine) providerFailure(err error) Result {
	kind := Classify(err)
	e.log.Error("llm provider call failed", zap.Stringer("kind", kind), zap.Error(err))
	switch kind {
	case KindRateLimited:
		return Result{Reply: RateLimitedReply, Outcome: OutcomeProviderRateLimited}
	case KindUnauthorized:
		return Result{Reply: ProviderErrReply, Outcome: OutcomeProviderUnauthorized}
	default:
		return Result{Reply: ProviderErrReply, Outcome: OutcomeProviderUnknown}
	}
}

func (e *Engine) cannedResult(message string, outcome Outcome, rule string) Result {
	return Result{Reply: e.canned.Respond(message), Outcome: outcome, RejectedBy: rule}
}
