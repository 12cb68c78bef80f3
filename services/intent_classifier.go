package services

import (
	"context"
	"strings"

	"github/itish2003/notechat/models"

	"go.uber.org/zap"
)

// IntentClassifier decides whether a query is about the user's notes.
// Anything other than a clear NOTES reply, including a failed call, is
// GENERAL: the cheap path is preferred over an unneeded note lookup.
type IntentClassifier struct {
	gen Generator
	log *zap.SugaredLogger
}

func NewIntentClassifier(gen Generator, log *zap.SugaredLogger) *IntentClassifier {
	return &IntentClassifier{gen: gen, log: log}
}

func (c *IntentClassifier) Classify(ctx context.Context, query string) models.Intent {
	raw := callText(ctx, c.gen, c.log, "intent", systemUser(intentSystemPrompt, intentUserPrompt(query))...)
	if raw == "" {
		return models.IntentGeneral
	}

	if strings.Contains(strings.ToUpper(StripReasoningTags(raw)), string(models.IntentNotes)) {
		return models.IntentNotes
	}
	return models.IntentGeneral
}
