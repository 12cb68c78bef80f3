package services

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

func nopLog() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// scriptedGen is a fake backend that answers each pipeline stage with a
// fixed reply or error and records what it was sent.
type scriptedGen struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	calls   map[string]int
	sent    map[string][]Message
}

func newScriptedGen(replies map[string]string) *scriptedGen {
	return &scriptedGen{
		replies: replies,
		errs:    map[string]error{},
		calls:   map[string]int{},
		sent:    map[string][]Message{},
	}
}

func (g *scriptedGen) Generate(_ context.Context, messages []Message) (string, error) {
	stage := stageOf(messages)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[stage]++
	g.sent[stage] = messages
	if err := g.errs[stage]; err != nil {
		return "", err
	}
	return g.replies[stage], nil
}

func (g *scriptedGen) callCount(stage string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[stage]
}

func stageOf(messages []Message) string {
	if len(messages) == 0 || messages[0].Role != RoleSystem {
		return "general"
	}
	switch sys := messages[0].Content; {
	case sys == intentSystemPrompt:
		return "intent"
	case sys == keywordSystemPrompt:
		return "keywords"
	case strings.HasPrefix(sys, answerSystemPrompt):
		return "answer"
	default:
		return "unknown"
	}
}
