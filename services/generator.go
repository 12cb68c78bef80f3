package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Role tags a message sent to the generation backend.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one role-tagged prompt part.
type Message struct {
	Role    Role
	Content string
}

// Generator is the text-generation backend. Its output is untrusted: callers
// validate everything it returns.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// GeneratorFunc adapts an ordinary function to the Generator interface.
type GeneratorFunc func(ctx context.Context, messages []Message) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}

// ErrEmptyResponse is returned by adapters when the backend answered with no text.
var ErrEmptyResponse = errors.New("generation backend returned no text")

// callText runs one generation call and never fails: errors and panics from
// the backend are logged and turned into an empty string, which every caller
// treats as "no usable output".
func callText(ctx context.Context, gen Generator, log *zap.SugaredLogger, stage string, messages ...Message) (out string) {
	if gen == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("SERVICE: %s generation panicked: %v", stage, r)
			out = ""
		}
	}()

	text, err := gen.Generate(ctx, messages)
	if err != nil {
		log.Warnf("SERVICE: %s generation failed: %v", stage, err)
		return ""
	}
	return strings.TrimSpace(text)
}

func systemUser(system, user string) []Message {
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}
}

func splitSystem(messages []Message) (system string, rest []Message) {
	var sys []string
	for _, m := range messages {
		if m.Role == RoleSystem {
			sys = append(sys, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(sys, "\n\n"), rest
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func wrapProviderErr(provider string, err error) error {
	return fmt.Errorf("%s generate: %w", provider, err)
}
