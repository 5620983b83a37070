package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"scisoc-quiz-service/internal/domain"
)

// QuestionSource reads raw quiz rows from Postgres. Columns are passed through
// as JSON text so the normalizer sees the stored shape.
type QuestionSource struct {
	pool *pgxpool.Pool
}

func NewQuestionSource(pool *pgxpool.Pool) *QuestionSource {
	return &QuestionSource{pool: pool}
}

const selectQuestions = `
SELECT id,
       coalesce(question, ''),
       coalesce(options, 'null'::jsonb)::text,
       coalesce(correct_option_index, 'null'::jsonb)::text
FROM quizzes
LIMIT $1`

func (s *QuestionSource) LoadQuestions(ctx context.Context, limit int) ([]domain.QuizQuestionRaw, error) {
	rows, err := s.pool.Query(ctx, selectQuestions, limit)
	if err != nil {
		return nil, fmt.Errorf("query quizzes: %w", err)
	}
	defer rows.Close()

	var out []domain.QuizQuestionRaw
	for rows.Next() {
		var (
			raw            domain.QuizQuestionRaw
			options, index string
		)
		if err := rows.Scan(&raw.ID, &raw.Question, &options, &index); err != nil {
			return nil, fmt.Errorf("scan quiz row: %w", err)
		}
		raw.Options = json.RawMessage(options)
		raw.CorrectOptionIndex = json.RawMessage(index)
		out = append(out, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read quizzes: %w", err)
	}
	return out, nil
}
