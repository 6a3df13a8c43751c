package aiquiz

import (
	"context"
	"errors"

	"github.com/saulo-duarte/quizclient/internal/config"
)

var ErrGeneratorUnavailable = errors.New("generator is not configured: set gemini.api_key")

type AIQuizContainer struct {
	Service Service
}

// NewAIQuizContainer wires the Gemini generator. Without an API key the container
// still builds, and every generation call fails with ErrGeneratorUnavailable.
func NewAIQuizContainer(ctx context.Context, cfg config.GeminiConfig) (*AIQuizContainer, error) {
	var generator Generator = GeneratorFunc(func(context.Context, string, GenerateOptions) (string, error) {
		return "", ErrGeneratorUnavailable
	})
	if cfg.APIKey != "" {
		g, err := NewGeminiGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		generator = g
	}
	return &AIQuizContainer{Service: NewService(generator)}, nil
}

// NewExplanations returns a cache scoped to one result view.
func (c *AIQuizContainer) NewExplanations() *ExplanationCache {
	return NewExplanationCache(c.Service)
}
