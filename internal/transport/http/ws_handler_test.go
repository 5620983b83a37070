package http

import (
	"context"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"scisoc-quiz-service/internal/domain"
)

func TestWebSocketLeaderboardStream(t *testing.T) {
	server, deps := newTestServer(t, nil, nil)
	ctx := context.Background()
	for _, s := range []domain.LeaderboardSubmission{
		{UserID: "u1", Score: 3, TotalQuestions: 12, TimeSpentSeconds: 40},
		{UserID: "u2", Score: 5, TotalQuestions: 12, TimeSpentSeconds: 40},
	} {
		if _, err := deps.leaderboard.Submit(ctx, s); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	u := "ws" + server.URL[len("http"):] + "/ws/leaderboard?limit=2"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect the current ranking first.
	initial := readLeaderboard(t, conn)
	if len(initial.Entries) != 2 || initial.Entries[0].UserID != "u2" {
		t.Fatalf("unexpected initial snapshot %+v", initial.Entries)
	}

	waitForSubscribers(t, deps.hub.Subscribers, 1)
	if _, err := deps.leaderboard.Submit(ctx, domain.LeaderboardSubmission{UserID: "u3", Score: 9, TotalQuestions: 12, TimeSpentSeconds: 10}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	update := readLeaderboard(t, conn)
	if len(update.Entries) != 2 {
		t.Fatalf("expected snapshot trimmed to limit, got %d entries", len(update.Entries))
	}
	if update.Entries[0].UserID != "u3" || update.Entries[1].UserID != "u2" {
		t.Fatalf("unexpected updated ranking %+v", update.Entries)
	}
}

func TestWebSocketUnsubscribesOnClose(t *testing.T) {
	server, deps := newTestServer(t, nil, nil)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/ws/leaderboard", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = readLeaderboard(t, conn)
	waitForSubscribers(t, deps.hub.Subscribers, 1)

	conn.Close()
	waitForSubscribers(t, deps.hub.Subscribers, 0)
}

func readLeaderboard(t *testing.T, conn *websocket.Conn) domain.Leaderboard {
	t.Helper()
	var msg outboundMessage[domain.Leaderboard]
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "leaderboard" {
		t.Fatalf("expected leaderboard message, got %s", msg.Type)
	}
	return msg.Payload
}

func waitForSubscribers(t *testing.T, count func() int, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if count() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d subscribers, got %d", want, count())
}
