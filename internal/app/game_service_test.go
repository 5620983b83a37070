package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"scisoc-quiz-service/internal/app"
	"scisoc-quiz-service/internal/domain"
	"scisoc-quiz-service/internal/infra/memory"
)

func TestDrawQuestionsNormalizesAndSamples(t *testing.T) {
	rows := make([]domain.QuizQuestionRaw, 0, 30)
	for i := 0; i < 30; i++ {
		rows = append(rows, domain.QuizQuestionRaw{
			ID:                 fmt.Sprintf("q%d", i),
			Question:           fmt.Sprintf("Câu hỏi %d", i),
			Options:            json.RawMessage(`"A,B,C,D"`),
			CorrectOptionIndex: json.RawMessage(`4`),
		})
	}
	rows = append(rows, domain.QuizQuestionRaw{ID: "bad", Question: "?", Options: json.RawMessage(`"A"`), CorrectOptionIndex: json.RawMessage(`0`)})

	service := app.NewGameService(memory.NewStaticQuestionSource(rows), app.NewSamplerWithRand(rand.New(rand.NewSource(3))), 0, discardLogger())
	got, err := service.DrawQuestions(context.Background(), 12)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(got) != 12 {
		t.Fatalf("expected 12 questions, got %d", len(got))
	}
	for _, q := range got {
		if q.ID == "bad" || !q.Valid() || q.CorrectOptionIndex != 3 {
			t.Fatalf("unexpected question %+v", q)
		}
	}
}

func TestDrawQuestionsEmptyIsDistinctError(t *testing.T) {
	rows := []domain.QuizQuestionRaw{{ID: "q1", Question: "?", Options: json.RawMessage(`[]`), CorrectOptionIndex: json.RawMessage(`0`)}}
	service := app.NewGameService(memory.NewStaticQuestionSource(rows), nil, 0, discardLogger())

	_, err := service.DrawQuestions(context.Background(), 12)
	if !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestDrawQuestionsWrapsSourceFailure(t *testing.T) {
	service := app.NewGameService(brokenSource{}, nil, 0, discardLogger())
	_, err := service.DrawQuestions(context.Background(), 12)
	if err == nil || errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestDrawQuestionsPassesFetchLimit(t *testing.T) {
	source := &limitRecorder{}
	service := app.NewGameService(source, nil, 0, discardLogger())
	_, _ = service.DrawQuestions(context.Background(), 12)
	if source.limit != app.DefaultFetchLimit {
		t.Fatalf("expected fetch limit %d, got %d", app.DefaultFetchLimit, source.limit)
	}
}

type brokenSource struct{}

func (brokenSource) LoadQuestions(context.Context, int) ([]domain.QuizQuestionRaw, error) {
	return nil, errors.New("connection refused")
}

type limitRecorder struct{ limit int }

func (l *limitRecorder) LoadQuestions(_ context.Context, limit int) ([]domain.QuizQuestionRaw, error) {
	l.limit = limit
	return nil, nil
}
