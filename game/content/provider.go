package content

import (
	"log/slog"

	"github.com/wricardo/shanghai-tycoon/game/engine"
)

// New returns the Gemini provider when an API key is configured and the
// built-in fallback content otherwise.
func New(cfg GeminiConfig, logger *slog.Logger) engine.ContentProvider {
	if logger == nil {
		logger = slog.Default()
	}
	p, err := NewGeminiProvider(cfg)
	if err != nil {
		logger.Info("content provider disabled, using built-in events", "reason", err)
		return engine.FallbackContent{}
	}
	logger.Info("content provider enabled", "provider", "gemini", "model", p.model)
	return p
}
