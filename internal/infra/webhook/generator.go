package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"scisoc-quiz-service/internal/domain"
)

const defaultTimeout = 60 * time.Second

// Generator posts study text to a workflow webhook that answers with a JSON
// array of generated questions.
type Generator struct {
	url        string
	httpClient *http.Client
}

// NewGenerator uses a client with the given timeout when httpClient is nil.
func NewGenerator(url string, httpClient *http.Client, timeout time.Duration) *Generator {
	if httpClient == nil {
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Generator{url: url, httpClient: httpClient}
}

type generateRequest struct {
	Text string `json:"text"`
}

func (g *Generator) Generate(ctx context.Context, text string) ([]domain.GeneratedQuestion, error) {
	body, err := json.Marshal(generateRequest{Text: text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call quiz webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("quiz webhook returned status %d", resp.StatusCode)
	}

	var questions []domain.GeneratedQuestion
	if err := json.NewDecoder(resp.Body).Decode(&questions); err != nil {
		return nil, fmt.Errorf("decode quiz webhook response: %w", err)
	}
	return questions, nil
}
