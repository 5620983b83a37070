package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"scisoc-quiz-service/internal/domain"
)

const (
	entriesKey = "leaderboard:entries"
	rankKey    = "leaderboard:rank"

	// timeScale leaves room for time spent below the score in one sorted-set
	// score. Products stay below 2^53, and so exact in a float64, while the
	// score is at most app.MaxScore.
	timeScale = 10_000_000
)

// LeaderboardStore keeps results in Redis:
//
//	HSET leaderboard:entries {member} {entry json}
//	ZADD leaderboard:rank    {score*timeScale + (timeScale-1-timeSpent)} {member}
//
// member is the inverted completion time followed by the entry id, so
// ZREVRANGE puts the earlier finisher first when score and time are equal.
type LeaderboardStore struct {
	client *redis.Client
	clock  func() time.Time
}

func NewLeaderboardStore(client *redis.Client) *LeaderboardStore {
	return &LeaderboardStore{client: client, clock: time.Now}
}

func (s *LeaderboardStore) Insert(ctx context.Context, submission domain.LeaderboardSubmission) (domain.LeaderboardEntry, error) {
	completedAt := s.clock().UTC()
	entry := domain.LeaderboardEntry{
		ID:               uuid.NewString(),
		UserID:           submission.UserID,
		Score:            submission.Score,
		TotalQuestions:   submission.TotalQuestions,
		TimeSpentSeconds: submission.TimeSpentSeconds,
		CompletedAt:      &completedAt,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}

	member := rankMember(completedAt, entry.ID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, entriesKey, member, data)
		pipe.ZAdd(ctx, rankKey, redis.Z{Score: rankScore(entry.Score, entry.TimeSpentSeconds), Member: member})
		return nil
	})
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("redis insert entry: %w", err)
	}
	return entry, nil
}

func (s *LeaderboardStore) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		return []domain.LeaderboardEntry{}, nil
	}
	members, err := s.client.ZRevRange(ctx, rankKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis rank range: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(members))
	if len(members) == 0 {
		return entries, nil
	}

	values, err := s.client.HMGet(ctx, entriesKey, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load entries: %w", err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var entry domain.LeaderboardEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func rankScore(score, timeSpent int) float64 {
	if timeSpent > timeScale-1 {
		timeSpent = timeScale - 1
	}
	if timeSpent < 0 {
		timeSpent = 0
	}
	return float64(score)*timeScale + float64(timeScale-1-timeSpent)
}

func rankMember(completedAt time.Time, id string) string {
	return fmt.Sprintf("%019d:%s", math.MaxInt64-completedAt.UnixNano(), id)
}
