package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"scisoc-quiz-service/internal/domain"
)

// LeaderboardStore is an append-only, in-process leaderboard.
type LeaderboardStore struct {
	mu      sync.RWMutex
	clock   func() time.Time
	entries []domain.LeaderboardEntry
}

func NewLeaderboardStore() *LeaderboardStore {
	return NewLeaderboardStoreWithClock(time.Now)
}

// NewLeaderboardStoreWithClock allows deterministic completion times in tests.
func NewLeaderboardStoreWithClock(now func() time.Time) *LeaderboardStore {
	return &LeaderboardStore{clock: now}
}

func (s *LeaderboardStore) Insert(_ context.Context, submission domain.LeaderboardSubmission) (domain.LeaderboardEntry, error) {
	completedAt := s.clock().UTC()
	entry := domain.LeaderboardEntry{
		ID:               uuid.NewString(),
		UserID:           submission.UserID,
		Score:            submission.Score,
		TotalQuestions:   submission.TotalQuestions,
		TimeSpentSeconds: submission.TimeSpentSeconds,
		CompletedAt:      &completedAt,
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return entry, nil
}

func (s *LeaderboardStore) Top(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	ranked := make([]domain.LeaderboardEntry, len(s.entries))
	copy(ranked, s.entries)
	s.mu.RUnlock()

	// Entries are appended in completion order, so a stable sort keeps the
	// earlier finisher first on a full tie.
	SortEntries(ranked)
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// SortEntries orders by score descending, then time spent ascending.
func SortEntries(entries []domain.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].TimeSpentSeconds < entries[j].TimeSpentSeconds
	})
}
