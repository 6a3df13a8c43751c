// Package aiquiz turns free-form generator output into fixed-shape quiz question drafts.
package aiquiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/saulo-duarte/quizclient/internal/config"
	"github.com/saulo-duarte/quizclient/internal/metrics"
)

const NoExplanation = "No explanation available."

const fullQuizMaxTokens = 1500

var ErrInvalidQuestionCount = errors.New("question count must be positive")

type Service interface {
	// GenerateOptionsForQuestion makes one generator call with no internal retry.
	GenerateOptionsForQuestion(ctx context.Context, questionText string) (Draft, error)
	// GenerateFullQuiz returns exactly req.Count drafts or an error. No internal retry.
	GenerateFullQuiz(ctx context.Context, req QuestionRequest) ([]Draft, error)
	// ExplainWrongAnswer retries the generator call once on failure.
	ExplainWrongAnswer(ctx context.Context, questionText, optionText string) (string, error)
}

type service struct {
	generator Generator
}

func NewService(generator Generator) Service {
	return &service{generator: generator}
}

func (s *service) GenerateOptionsForQuestion(ctx context.Context, questionText string) (Draft, error) {
	log := config.WithContext(ctx)

	raw, err := s.generator.Generate(ctx, BuildOptionsPrompt(questionText), GenerateOptions{})
	if err != nil {
		log.WithError(err).Error("Failed to generate options")
		return Draft{}, fmt.Errorf("generate options: %w", err)
	}

	res := ParseOptions(raw)
	metrics.GenerationParses.WithLabelValues("options", string(res.Stage)).Inc()
	if !res.OK {
		log.Warn("generator output had no four usable options")
		return Draft{}, fmt.Errorf("%w: could not find four options", ErrMalformedGeneration)
	}

	d := res.Draft
	d.Text = questionText
	log.WithField("stage", res.Stage).Debug("options parsed")
	return d, nil
}

func (s *service) GenerateFullQuiz(ctx context.Context, req QuestionRequest) ([]Draft, error) {
	log := config.WithContext(ctx).WithField("count", req.Count)

	if req.Count <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuestionCount, req.Count)
	}

	raw, err := s.generator.Generate(ctx, BuildFullQuizPrompt(req), GenerateOptions{
		Temperature: genai.Ptr[float32](1),
		MaxTokens:   fullQuizMaxTokens,
	})
	if err != nil {
		log.WithError(err).Error("Failed to generate quiz")
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	elements, err := DecodeQuizJSON(raw)
	if err != nil {
		metrics.GenerationParses.WithLabelValues("quiz", string(StageNone)).Inc()
		log.WithError(err).Warn("generator did not return a JSON array")
		return nil, err
	}
	metrics.GenerationParses.WithLabelValues("quiz", string(StageJSON)).Inc()

	if len(elements) != req.Count {
		log.Infof("generator returned %d questions, normalizing", len(elements))
	}
	return SanitizeDrafts(elements, req.Count), nil
}

func (s *service) ExplainWrongAnswer(ctx context.Context, questionText, optionText string) (string, error) {
	log := config.WithContext(ctx)
	prompt := BuildExplanationPrompt(questionText, optionText)

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			metrics.GenerationRetries.Inc()
			log.WithError(err).Info("retrying explanation")
		}

		var raw string
		raw, err = s.generator.Generate(ctx, prompt, GenerateOptions{})
		if errors.Is(err, ErrEmptyResponse) || (err == nil && strings.TrimSpace(raw) == "") {
			return NoExplanation, nil
		}
		if err == nil {
			return strings.TrimSpace(raw), nil
		}
		if ctx.Err() != nil {
			break
		}
	}

	log.WithError(err).Error("Failed to generate explanation")
	return "", fmt.Errorf("explain answer: %w", err)
}
