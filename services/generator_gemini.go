package services

import (
	"context"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiGenerator talks to Google Gemini through the genai SDK.
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiGenerator(client *genai.Client, model string, timeout time.Duration) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: model, timeout: timeout}
}

// Generate sends system messages as the system instruction and the rest as
// user turns, then concatenates the text parts of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	system, rest := splitSystem(messages)
	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{SystemInstruction: genai.Text(system)[0]}
	}

	contents := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		contents = append(contents, genai.Text(m.Content)...)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", wrapProviderErr("gemini", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var responseText strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p != nil && p.Text != "" {
			responseText.WriteString(p.Text)
		}
	}
	if responseText.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return responseText.String(), nil
}
