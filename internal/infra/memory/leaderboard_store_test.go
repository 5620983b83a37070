package memory

import (
	"context"
	"testing"
	"time"

	"scisoc-quiz-service/internal/domain"
)

func TestLeaderboardStoreRanksByScoreThenTime(t *testing.T) {
	store := NewLeaderboardStore()
	ctx := context.Background()

	for _, s := range []domain.LeaderboardSubmission{
		{UserID: "a", Score: 10, TotalQuestions: 12, TimeSpentSeconds: 30},
		{UserID: "b", Score: 10, TotalQuestions: 12, TimeSpentSeconds: 20},
		{UserID: "c", Score: 8, TotalQuestions: 12, TimeSpentSeconds: 5},
	} {
		if _, err := store.Insert(ctx, s); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	top, err := store.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	got := []string{top[0].UserID, top[1].UserID, top[2].UserID}
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestLeaderboardStoreAssignsIDAndTimestamp(t *testing.T) {
	at := time.Date(2024, 11, 22, 8, 30, 0, 0, time.UTC)
	store := NewLeaderboardStoreWithClock(func() time.Time { return at })

	entry, err := store.Insert(context.Background(), domain.LeaderboardSubmission{UserID: "u1", Score: 3, TotalQuestions: 12, TimeSpentSeconds: 40})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if entry.ID == "" {
		t.Fatalf("expected generated id")
	}
	if entry.CompletedAt == nil || !entry.CompletedAt.Equal(at) {
		t.Fatalf("expected completed_at %v, got %v", at, entry.CompletedAt)
	}
}

func TestLeaderboardStoreLimitAndTieOrder(t *testing.T) {
	store := NewLeaderboardStore()
	ctx := context.Background()
	for _, id := range []string{"first", "second", "third"} {
		_, _ = store.Insert(ctx, domain.LeaderboardSubmission{UserID: id, Score: 5, TotalQuestions: 12, TimeSpentSeconds: 60})
	}

	top, _ := store.Top(ctx, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].UserID != "first" || top[1].UserID != "second" {
		t.Fatalf("expected earlier finishers first on full tie, got %+v", top)
	}
}
