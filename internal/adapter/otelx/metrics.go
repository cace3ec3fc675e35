package otelx

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "smartpotato"

// Metrics holds all Smart Potato metric instruments.
type Metrics struct {
	MessagesSent     metric.Int64Counter
	CompletionCalls  metric.Int64Counter
	CompletionErrors metric.Int64Counter
	TitlesGenerated  metric.Int64Counter
	TidyRuns         metric.Int64Counter
	TidyFallbacks    metric.Int64Counter
	RemindersFired   metric.Int64Counter
	CompletionTime   metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.MessagesSent, err = meter.Int64Counter("smartpotato.messages.sent",
		metric.WithDescription("Number of user messages accepted"))
	if err != nil {
		return nil, err
	}

	m.CompletionCalls, err = meter.Int64Counter("smartpotato.completions.calls",
		metric.WithDescription("Number of upstream completion calls"))
	if err != nil {
		return nil, err
	}

	m.CompletionErrors, err = meter.Int64Counter("smartpotato.completions.errors",
		metric.WithDescription("Number of failed upstream completion calls"))
	if err != nil {
		return nil, err
	}

	m.TitlesGenerated, err = meter.Int64Counter("smartpotato.titles.generated",
		metric.WithDescription("Number of auto-generated conversation titles"))
	if err != nil {
		return nil, err
	}

	m.TidyRuns, err = meter.Int64Counter("smartpotato.tidy.runs",
		metric.WithDescription("Number of grouping runs"))
	if err != nil {
		return nil, err
	}

	m.TidyFallbacks, err = meter.Int64Counter("smartpotato.tidy.fallbacks",
		metric.WithDescription("Number of grouping runs that used the keyword fallback"))
	if err != nil {
		return nil, err
	}

	m.RemindersFired, err = meter.Int64Counter("smartpotato.reminders.fired",
		metric.WithDescription("Number of reminders fired"))
	if err != nil {
		return nil, err
	}

	m.CompletionTime, err = meter.Float64Histogram("smartpotato.completions.duration_seconds",
		metric.WithDescription("Upstream completion duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
