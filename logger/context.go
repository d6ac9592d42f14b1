package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are added to every log record written with a context that
// carries them.
type LogFields struct {
	RequestID *string // HTTP request id
	Gloss     *string // gloss text being resolved
	Source    *string // where the utterance came from: tokens, text or gloss
	Component string  // e.g. "signpose.pipeline"
}

// WithLogFields merges fields into the context fields. Newer non-nil and
// non-empty values win.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields returns the fields of the context, empty if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.RequestID != nil {
		result.RequestID = new.RequestID
	}
	if new.Gloss != nil {
		result.Gloss = new.Gloss
	}
	if new.Source != nil {
		result.Source = new.Source
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

func Ptr[T any](v T) *T {
	return &v
}

// Truncate cuts s to maxLen bytes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
