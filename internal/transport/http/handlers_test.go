package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"scisoc-quiz-service/internal/app"
	"scisoc-quiz-service/internal/domain"
	"scisoc-quiz-service/internal/infra/memory"
)

type testDeps struct {
	leaderboard *app.LeaderboardService
	profiles    *memory.ProfileStore
	hub         *app.LeaderboardHub
}

func newTestServer(t *testing.T, rows []domain.QuizQuestionRaw, gen app.QuizGenerator) (*httptest.Server, testDeps) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	profiles := memory.NewProfileStore()
	hub := app.NewLeaderboardHub()
	leaderboard := app.NewLeaderboardService(memory.NewLeaderboardStore(), profiles, hub, log)
	game := app.NewGameService(memory.NewStaticQuestionSource(rows), nil, 0, log)

	var generator *app.GeneratorService
	if gen != nil {
		generator = app.NewGeneratorService(gen)
	}
	api := NewAPI(game, leaderboard, app.NewProfileService(profiles), generator)
	server := httptest.NewServer(NewRouter(RouterConfig{
		API: api,
		WS:  NewWSHandler(leaderboard),
		Log: log,
	}))
	t.Cleanup(server.Close)
	return server, testDeps{leaderboard: leaderboard, profiles: profiles, hub: hub}
}

func sampleRows() []domain.QuizQuestionRaw {
	return []domain.QuizQuestionRaw{
		{ID: "q1", Question: "Ai sáng lập?", Options: json.RawMessage(`["Mác","Ximông"]`), CorrectOptionIndex: json.RawMessage(`0`)},
		{ID: "q2", Question: "Năm nào?", Options: json.RawMessage(`"1848, 1867, 1871"`), CorrectOptionIndex: json.RawMessage(`"3"`)},
		{ID: "bad", Question: "Lỗi", Options: json.RawMessage(`"một"`), CorrectOptionIndex: json.RawMessage(`0`)},
	}
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHandleGameReturnsNormalizedQuestions(t *testing.T) {
	server, _ := newTestServer(t, sampleRows(), nil)

	resp, err := http.Get(server.URL + "/api/game?count=abc")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body gameResponse
	decodeBody(t, resp, &body)
	if len(body.Quizzes) != 2 {
		t.Fatalf("expected 2 valid questions, got %d", len(body.Quizzes))
	}
	for _, q := range body.Quizzes {
		if !q.Valid() {
			t.Fatalf("invalid question served: %+v", q)
		}
		if q.ID == "q2" && q.CorrectOptionIndex != 2 {
			t.Fatalf("expected 1-based index corrected to 2, got %d", q.CorrectOptionIndex)
		}
	}
}

func TestHandleGameClampsCount(t *testing.T) {
	server, _ := newTestServer(t, sampleRows(), nil)

	resp, err := http.Get(server.URL + "/api/game?count=1")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	var body gameResponse
	decodeBody(t, resp, &body)
	if len(body.Quizzes) != 1 {
		t.Fatalf("expected 1 question, got %d", len(body.Quizzes))
	}
}

func TestHandleGameEmptyIsNotFound(t *testing.T) {
	server, _ := newTestServer(t, nil, nil)

	resp, err := http.Get(server.URL + "/api/game")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var body errorResponse
	decodeBody(t, resp, &body)
	if body.Error != domain.ErrNoQuestions.Error() {
		t.Fatalf("unexpected error body %q", body.Error)
	}
}

func TestSubmitAndRankLeaderboard(t *testing.T) {
	server, deps := newTestServer(t, sampleRows(), nil)
	_, _, _ = deps.profiles.GetOrCreateProfile(context.Background(), domain.Profile{UserID: "user-bbbbbbbb", FullName: "Nguyễn Văn B"})

	for _, body := range []string{
		`{"userId":"user-aaaaaaaa","score":10,"totalQuestions":12,"timeSpent":30}`,
		`{"userId":"user-bbbbbbbb","score":"10","totalQuestions":"12","timeSpent":" 20 "}`,
		`{"userId":"user-cccccccc","score":8,"totalQuestions":12,"timeSpent":5}`,
	} {
		resp := postJSON(t, server.URL+"/api/leaderboard", body)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201 for %s, got %d", body, resp.StatusCode)
		}
		var created submitResponse
		decodeBody(t, resp, &created)
		if created.Entry.ID == "" || created.Entry.CompletedAt == nil {
			t.Fatalf("expected stored entry, got %+v", created.Entry)
		}
	}

	resp, err := http.Get(server.URL + "/api/leaderboard?limit=2")
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	var board leaderboardResponse
	decodeBody(t, resp, &board)
	if len(board.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(board.Entries))
	}
	if board.Entries[0].UserID != "user-bbbbbbbb" || board.Entries[0].DisplayName != "Nguyễn Văn B" {
		t.Fatalf("unexpected leader %+v", board.Entries[0])
	}
	if board.Entries[1].DisplayName != "user-aaa" {
		t.Fatalf("expected partial id label, got %q", board.Entries[1].DisplayName)
	}
}

func TestSubmitRejectsInvalidBodies(t *testing.T) {
	server, _ := newTestServer(t, sampleRows(), nil)

	for _, body := range []string{
		`not-json`,
		`[]`,
		`{"score":1,"totalQuestions":12,"timeSpent":1}`,
		`{"userId":"u1","score":-1,"totalQuestions":12,"timeSpent":1}`,
		`{"userId":"u1","score":1,"totalQuestions":0,"timeSpent":1}`,
		`{"userId":"u1","score":1,"totalQuestions":12,"timeSpent":-3}`,
		`{"userId":"u1","score":1.5,"totalQuestions":12,"timeSpent":1}`,
		`{"userId":"u1","score":"abc","totalQuestions":12,"timeSpent":1}`,
		`{"userId":"u1","score":null,"totalQuestions":12,"timeSpent":1}`,
		`{"userId":"u1","score":100000001,"totalQuestions":12,"timeSpent":1}`,
	} {
		resp := postJSON(t, server.URL+"/api/leaderboard", body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, resp.StatusCode)
		}
	}
}

func TestSyncUserCreatesOnce(t *testing.T) {
	server, _ := newTestServer(t, sampleRows(), nil)

	resp := postJSON(t, server.URL+"/api/users/sync", `{"userId":"u1","email":"lan@example.com"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var first syncUserResponse
	decodeBody(t, resp, &first)
	if !first.User.IsNewUser || first.User.FullName != "lan" {
		t.Fatalf("unexpected first sync %+v", first.User)
	}

	var second syncUserResponse
	decodeBody(t, postJSON(t, server.URL+"/api/users/sync", `{"userId":"u1","email":"lan@example.com","fullName":"Trần Lan"}`), &second)
	if second.User.IsNewUser {
		t.Fatalf("expected existing user on second sync")
	}

	resp = postJSON(t, server.URL+"/api/users/sync", `{"userId":"u2"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without email, got %d", resp.StatusCode)
	}
}

type stubGenerator struct {
	questions []domain.GeneratedQuestion
	err       error
}

func (g stubGenerator) Generate(context.Context, string) ([]domain.GeneratedQuestion, error) {
	return g.questions, g.err
}

func TestGenerateQuizStatuses(t *testing.T) {
	unconfigured, _ := newTestServer(t, nil, nil)
	resp := postJSON(t, unconfigured.URL+"/api/quiz", `{"text":"giai cấp"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without webhook, got %d", resp.StatusCode)
	}

	failing, _ := newTestServer(t, nil, stubGenerator{err: errors.New("boom")})
	resp = postJSON(t, failing.URL+"/api/quiz", `{"text":"giai cấp"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 on upstream failure, got %d", resp.StatusCode)
	}

	ok, _ := newTestServer(t, nil, stubGenerator{questions: []domain.GeneratedQuestion{{ID: 1, Question: "?", Options: []string{"a", "b"}}}})
	resp = postJSON(t, ok.URL+"/api/quiz", `{"text":"   "}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank prompt, got %d", resp.StatusCode)
	}

	resp = postJSON(t, ok.URL+"/api/quiz", `{"text":"giai cấp"}`)
	var body generateQuizResponse
	decodeBody(t, resp, &body)
	if !body.Success || len(body.Quizzes) != 1 || body.Timestamp.IsZero() {
		t.Fatalf("unexpected generation response %+v", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	server, _ := newTestServer(t, nil, nil)

	req, _ := http.NewRequest(http.MethodOptions, server.URL+"/api/leaderboard", bytes.NewReader(nil))
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t, nil, nil)
	client := &http.Client{Timeout: time.Second}
	resp, err := client.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected healthz response %d %q", resp.StatusCode, body)
	}
}
