package aiquiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/saulo-duarte/quizclient/internal/config"
)

var ErrEmptyResponse = errors.New("generator returned no text")

type GenerateOptions struct {
	// Temperature is left to the model default when nil.
	Temperature *float32
	MaxTokens   int
}

// Generator is the opaque prompt-to-text capability.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

type GeneratorFunc func(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	return f(ctx, prompt, opts)
}

type geminiGenerator struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

func NewGeminiGenerator(ctx context.Context, cfg config.GeminiConfig) (Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	return &geminiGenerator{
		client:  client,
		model:   cfg.Model,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	log := config.WithContext(ctx).WithField("model", g.model)

	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for generator quota: %w", err)
	}

	var genCfg *genai.GenerateContentConfig
	if opts.Temperature != nil || opts.MaxTokens > 0 {
		genCfg = &genai.GenerateContentConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: int32(opts.MaxTokens),
		}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genCfg)
	if err != nil {
		log.WithError(err).Error("Failed to generate content")
		return "", fmt.Errorf("generate content: %w", err)
	}

	raw := strings.TrimSpace(result.Text())
	log.Debugf("generator returned %d bytes", len(raw))
	if raw == "" {
		return "", ErrEmptyResponse
	}
	return raw, nil
}
