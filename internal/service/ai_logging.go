package service

import (
	"strings"
	"unicode/utf8"

	"github.com/revivewell/internal/logging"
)

const maxAILogSnippetRunes = 1024

// logAIExchange 用于输出 AI 请求与响应的关键信息，方便排查模型行为。
func logAIExchange(kind, phase, content string) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		logging.Debug().Str("kind", kind).Str("phase", phase).Msg("ai exchange: <empty>")
		return
	}

	runeCount := utf8.RuneCountInString(trimmed)
	snippet := trimmed
	if runeCount > maxAILogSnippetRunes {
		snippet = string([]rune(trimmed)[:maxAILogSnippetRunes]) + "…(truncated)"
	}
	logging.Debug().
		Str("kind", kind).
		Str("phase", phase).
		Int("runes", runeCount).
		Str("content", snippet).
		Msg("ai exchange")
}
