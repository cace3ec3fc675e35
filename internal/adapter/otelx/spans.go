package otelx

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "smartpotato"

// StartCompletionSpan starts a span for an upstream completion call.
func StartCompletionSpan(ctx context.Context, purpose, model string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "completion",
		trace.WithAttributes(
			attribute.String("completion.purpose", purpose),
			attribute.String("completion.model", model),
		),
	)
}

// StartTidySpan starts a span for a conversation grouping run.
func StartTidySpan(ctx context.Context, candidates int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "tidy",
		trace.WithAttributes(
			attribute.Int("tidy.candidates", candidates),
		),
	)
}

// StartReminderSpan starts a span for reminder firing.
func StartReminderSpan(ctx context.Context, reminderID, conversationID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "reminder.fire",
		trace.WithAttributes(
			attribute.String("reminder.id", reminderID),
			attribute.String("conversation.id", conversationID),
		),
	)
}
