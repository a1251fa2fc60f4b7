package ai

import (
	"context"
	log "log/slog"
	"strings"
)

// exhaustedReply is the only failure text a caller ever sees.
const exhaustedReply = "I am having trouble accessing my neural network."

// Provider is one chat backend. Exactly one attempt per Ask; the chain
// does the falling over.
type Provider interface {
	Name() string
	Ask(ctx context.Context, prompt string) (string, error)
}

// Chain tries providers in order and returns the first non-empty
// answer. It never returns an error: exhaustion degrades to a fixed
// apology.
type Chain struct {
	providers []Provider
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

func (c *Chain) Ask(ctx context.Context, prompt string) string {
	for _, p := range c.providers {
		answer, err := p.Ask(ctx, prompt)
		if err != nil {
			log.Warn("provider failed, falling through", "provider", p.Name(), "err", err)
			continue
		}
		if strings.TrimSpace(answer) == "" {
			log.Warn("provider returned empty answer", "provider", p.Name())
			continue
		}
		log.Debug("provider answered", "provider", p.Name())
		return answer
	}
	return exhaustedReply
}
