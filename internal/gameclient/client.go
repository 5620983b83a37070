package gameclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"scisoc-quiz-service/internal/app"
	"scisoc-quiz-service/internal/domain"
)

const defaultServer = "http://127.0.0.1:8080"

var ErrServiceUnavailable = errors.New("quiz service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// HTTPClient talks to the quiz service's JSON API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

type gameResponse struct {
	Quizzes []domain.QuizQuestion `json:"quizzes"`
}

type leaderboardResponse struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
}

type submitRequest struct {
	UserID         string `json:"userId"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	TimeSpent      int    `json:"timeSpent"`
}

type submitResponse struct {
	Entry domain.LeaderboardEntry `json:"entry"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultServer
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: baseURL, httpClient: httpClient}
}

// FetchQuestions requests a fresh question set. An empty set is reported as
// domain.ErrNoQuestions, distinct from transport failures. Questions that
// break the option/index invariant are dropped here as well.
func (c *HTTPClient) FetchQuestions(ctx context.Context, count int) ([]domain.QuizQuestion, error) {
	query := url.Values{}
	query.Set("count", strconv.Itoa(app.ClampCount(count)))

	var payload gameResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/game?"+query.Encode(), nil, &payload)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNoQuestions
	}
	if err != nil {
		return nil, err
	}

	questions := make([]domain.QuizQuestion, 0, len(payload.Quizzes))
	for _, q := range payload.Quizzes {
		if q.Valid() {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return questions, nil
}

func (c *HTTPClient) SubmitResult(ctx context.Context, userID string, result app.SessionResult) (domain.LeaderboardEntry, error) {
	request := submitRequest{
		UserID:         userID,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		TimeSpent:      result.TimeSpentSeconds,
	}
	var payload submitResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/leaderboard", request, &payload); err != nil {
		return domain.LeaderboardEntry{}, err
	}
	return payload.Entry, nil
}

func (c *HTTPClient) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(app.ClampLimit(limit)))

	var payload leaderboardResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/leaderboard?"+query.Encode(), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Entries, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
