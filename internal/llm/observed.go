package llm

import (
	"context"
	"time"

	"support_chat_backend/internal/reply"
	"support_chat_backend/pkg/monitoring"
	"support_chat_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Observed wraps a client with a span and a latency observation per call.
type Observed struct {
	next     reply.Client
	provider string
}

func Observe(provider string, next reply.Client) *Observed {
	return &Observed{next: next, provider: provider}
}

func (o *Observed) Name() string {
	return o.provider
}

func (o *Observed) Complete(ctx context.Context, req reply.CompletionRequest) (reply.Completion, error) {
	ctx, span := tracing.Tracer.Start(ctx, "llm.complete", trace.WithAttributes(
		attribute.String("llm.provider", o.provider),
		attribute.Int("llm.history_turns", len(req.Turns)),
		attribute.Int("llm.max_tokens", req.MaxTokens),
	))
	defer span.End()

	start := time.Now()
	out, err := o.next.Complete(ctx, req)
	result := "ok"
	if err != nil {
		result = reply.Classify(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	} else if out.TokensUsed != nil {
		span.SetAttributes(attribute.Int("llm.tokens_used", *out.TokensUsed))
	}
	monitoring.LLMLatency.WithLabelValues(o.provider, result).Observe(time.Since(start).Seconds())
	return out, err
}
