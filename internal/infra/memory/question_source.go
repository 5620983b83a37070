package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"scisoc-quiz-service/internal/domain"
)

// StaticQuestionSource serves raw rows held in memory (tests, demos, seed files).
type StaticQuestionSource struct {
	rows []domain.QuizQuestionRaw
}

func NewStaticQuestionSource(rows []domain.QuizQuestionRaw) *StaticQuestionSource {
	return &StaticQuestionSource{rows: rows}
}

func (s *StaticQuestionSource) LoadQuestions(_ context.Context, limit int) ([]domain.QuizQuestionRaw, error) {
	if limit <= 0 || limit > len(s.rows) {
		limit = len(s.rows)
	}
	out := make([]domain.QuizQuestionRaw, limit)
	copy(out, s.rows[:limit])
	return out, nil
}

// ReadQuestionFile reads a JSON array of raw quiz rows. Options and indexes
// are kept exactly as written in the file. Elements that are not objects, or
// whose id or question is not a string, are skipped; only an unreadable file
// or a document that is not an array fails.
func ReadQuestionFile(path string, log logrus.FieldLogger) ([]domain.QuizQuestionRaw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question file: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decode question file: invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, fmt.Errorf("decode question file: expected a JSON array")
	}

	var (
		rows    []domain.QuizQuestionRaw
		skipped int
	)
	doc.ForEach(func(_, item gjson.Result) bool {
		row, ok := rawRow(item)
		if !ok {
			skipped++
			return true
		}
		rows = append(rows, row)
		return true
	})
	if skipped > 0 {
		log.WithFields(logrus.Fields{
			"file":    path,
			"skipped": skipped,
		}).Debug("skipped malformed quiz rows")
	}
	return rows, nil
}

func rawRow(item gjson.Result) (domain.QuizQuestionRaw, bool) {
	if !item.IsObject() {
		return domain.QuizQuestionRaw{}, false
	}
	id := item.Get("id")
	if id.Type != gjson.String {
		return domain.QuizQuestionRaw{}, false
	}
	question := item.Get("question")
	if question.Exists() && question.Type != gjson.String {
		return domain.QuizQuestionRaw{}, false
	}
	return domain.QuizQuestionRaw{
		ID:                 id.Str,
		Question:           question.Str,
		Options:            rawValue(item.Get("options")),
		CorrectOptionIndex: rawValue(item.Get("correct_option_index")),
	}, true
}

// rawValue keeps a member's JSON text untouched; absent members stay empty.
func rawValue(v gjson.Result) json.RawMessage {
	if !v.Exists() {
		return nil
	}
	return json.RawMessage(v.Raw)
}
