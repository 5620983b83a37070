package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"scisoc-quiz-service/internal/app"
	"scisoc-quiz-service/internal/domain"
	"scisoc-quiz-service/internal/logging"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNoQuestions):
		writeError(w, http.StatusNotFound, domain.ErrNoQuestions.Error())
	case errors.Is(err, domain.ErrInvalidSubmission),
		errors.Is(err, domain.ErrInvalidProfile),
		errors.Is(err, domain.ErrEmptyPrompt):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrGeneratorUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logging.FromContext(r.Context()).WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "request failed")
	}
}

func decodeJSONBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

// parseSubmission reads a result body whose numeric fields may arrive as JSON
// numbers or numeric strings.
func parseSubmission(body []byte) (domain.LeaderboardSubmission, error) {
	if !gjson.ValidBytes(body) {
		return domain.LeaderboardSubmission{}, errInvalidJSON
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return domain.LeaderboardSubmission{}, errInvalidJSON
	}

	userID := doc.Get("userId")
	if userID.Type != gjson.String {
		return domain.LeaderboardSubmission{}, domain.ErrInvalidSubmission
	}
	score, ok1 := looseNumber(doc.Get("score"))
	total, ok2 := looseNumber(doc.Get("totalQuestions"))
	spent, ok3 := looseNumber(doc.Get("timeSpent"))
	if !ok1 || !ok2 || !ok3 {
		return domain.LeaderboardSubmission{}, domain.ErrInvalidSubmission
	}
	return app.NewSubmission(userID.Str, score, total, spent)
}

var errInvalidJSON = errors.New("invalid JSON body")

func looseNumber(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Num, true
	case gjson.String:
		text := strings.TrimSpace(v.Str)
		if text == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(text, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
