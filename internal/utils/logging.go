package utils

import (
	"context"
	"log/slog"

	copilot "github.com/github/copilot-sdk/go"
)

// maxLoggedContent caps how much judge output is copied into a single log record.
const maxLoggedContent = 2048

// JudgeEventToSlog logs a copilot session event emitted while the judge is
// working. It is a no-op unless debug logging is enabled.
func JudgeEventToSlog(event copilot.SessionEvent) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{
		"type", event.Type,
	}

	attrs = addIf(attrs, "content", event.Data.Content)
	attrs = addIf(attrs, "deltaContent", event.Data.DeltaContent)
	attrs = addIf(attrs, "reasoningText", event.Data.ReasoningText)

	slog.Debug("Judge event received", attrs...)
}

// Truncate shortens s to at most maxLoggedContent bytes for logging.
func Truncate(s string) string {
	if len(s) <= maxLoggedContent {
		return s
	}
	return s[:maxLoggedContent] + "...(truncated)"
}

func addIf[T any](attrs []any, name string, v *T) []any {
	if v != nil {
		attrs = append(attrs, name)
		attrs = append(attrs, *v)
	}

	return attrs
}
