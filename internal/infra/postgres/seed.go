package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"scisoc-quiz-service/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID                 string `bun:"id,pk"`
	Question           string `bun:"question"`
	Options            string `bun:"options,type:jsonb,nullzero"`
	CorrectOptionIndex string `bun:"correct_option_index,type:jsonb,nullzero"`
}

// SeedQuestions upserts raw rows into the quizzes table as they are, without
// normalizing them. It returns the number of rows written.
func SeedQuestions(ctx context.Context, db *bun.DB, rows []domain.QuizQuestionRaw) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	models := make([]quizRow, len(rows))
	for i, r := range rows {
		models[i] = quizRow{
			ID:                 r.ID,
			Question:           r.Question,
			Options:            string(r.Options),
			CorrectOptionIndex: string(r.CorrectOptionIndex),
		}
	}
	res, err := db.NewInsert().
		Model(&models).
		On("CONFLICT (id) DO UPDATE").
		Set("question = EXCLUDED.question").
		Set("options = EXCLUDED.options").
		Set("correct_option_index = EXCLUDED.correct_option_index").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed quizzes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return len(rows), nil
	}
	return int(n), nil
}
