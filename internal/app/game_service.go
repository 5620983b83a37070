package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"scisoc-quiz-service/internal/domain"
)

// DefaultFetchLimit is how many raw rows one load reads from the store.
const DefaultFetchLimit = 200

// QuestionSource loads raw quiz rows (from Postgres, a cache, or memory).
type QuestionSource interface {
	LoadQuestions(ctx context.Context, limit int) ([]domain.QuizQuestionRaw, error)
}

// GameService serves sanitized question sets for play sessions.
type GameService struct {
	source     QuestionSource
	sampler    *Sampler
	fetchLimit int
	log        logrus.FieldLogger
}

func NewGameService(source QuestionSource, sampler *Sampler, fetchLimit int, log logrus.FieldLogger) *GameService {
	if fetchLimit <= 0 {
		fetchLimit = DefaultFetchLimit
	}
	if sampler == nil {
		sampler = NewSampler()
	}
	return &GameService{source: source, sampler: sampler, fetchLimit: fetchLimit, log: log}
}

// DrawQuestions loads, normalizes and samples questions for one session.
// It returns domain.ErrNoQuestions when nothing survives normalization.
func (s *GameService) DrawQuestions(ctx context.Context, count int) ([]domain.QuizQuestion, error) {
	rows, err := s.source.LoadQuestions(ctx, s.fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	questions := NormalizeAll(rows)
	if dropped := len(rows) - len(questions); dropped > 0 {
		s.log.WithFields(logrus.Fields{
			"rows":    len(rows),
			"dropped": dropped,
		}).Debug("dropped malformed quiz rows")
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return s.sampler.Sample(questions, count), nil
}
