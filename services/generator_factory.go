package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github/itish2003/notechat/config"

	"google.golang.org/genai"
)

var ErrUnknownProvider = errors.New("unknown provider")

// NewGenerator builds the generation backend selected by the configuration.
func NewGenerator(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderGemini:
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return NewGeminiGenerator(client, cfg.Model, cfg.Timeout), nil
	case config.ProviderOllama:
		return NewOllamaGenerator(cfg.BaseURL, cfg.Model, cfg.Timeout)
	case config.ProviderOpenAI:
		return NewOpenAIGenerator(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("%w: llm provider %q", ErrUnknownProvider, cfg.Provider)
	}
}
