package app

import (
	"context"
	"strings"

	"scisoc-quiz-service/internal/domain"
)

// QuizGenerator turns free-form study text into questions (an AI workflow).
type QuizGenerator interface {
	Generate(ctx context.Context, text string) ([]domain.GeneratedQuestion, error)
}

type GeneratorService struct {
	generator QuizGenerator
}

// NewGeneratorService accepts a nil generator; Generate then reports
// domain.ErrGeneratorUnavailable.
func NewGeneratorService(generator QuizGenerator) *GeneratorService {
	return &GeneratorService{generator: generator}
}

func (s *GeneratorService) Generate(ctx context.Context, text string) ([]domain.GeneratedQuestion, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyPrompt
	}
	if s.generator == nil {
		return nil, domain.ErrGeneratorUnavailable
	}
	return s.generator.Generate(ctx, text)
}
