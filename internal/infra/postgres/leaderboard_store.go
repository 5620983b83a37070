package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"scisoc-quiz-service/internal/domain"
)

// OpenBun opens a bun handle over pgdriver for dsn.
func OpenBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

type leaderboardRow struct {
	bun.BaseModel `bun:"table:leaderboard"`

	ID             string    `bun:"id,pk,nullzero,type:uuid,default:gen_random_uuid()"`
	UserID         string    `bun:"user_id,notnull"`
	Score          int       `bun:"score,notnull"`
	TotalQuestions int       `bun:"total_questions,notnull"`
	TimeSpent      int       `bun:"time_spent,notnull"`
	CompletedAt    time.Time `bun:"completed_at,nullzero,notnull,default:current_timestamp"`
}

func (r leaderboardRow) entry() domain.LeaderboardEntry {
	completed := r.CompletedAt.UTC()
	return domain.LeaderboardEntry{
		ID:               r.ID,
		UserID:           r.UserID,
		Score:            r.Score,
		TotalQuestions:   r.TotalQuestions,
		TimeSpentSeconds: r.TimeSpent,
		CompletedAt:      &completed,
	}
}

// LeaderboardStore appends results to the leaderboard table through bun.
type LeaderboardStore struct {
	db *bun.DB
}

func NewLeaderboardStore(db *bun.DB) *LeaderboardStore {
	return &LeaderboardStore{db: db}
}

func (s *LeaderboardStore) Insert(ctx context.Context, sub domain.LeaderboardSubmission) (domain.LeaderboardEntry, error) {
	row := &leaderboardRow{
		UserID:         sub.UserID,
		Score:          sub.Score,
		TotalQuestions: sub.TotalQuestions,
		TimeSpent:      sub.TimeSpentSeconds,
	}
	if _, err := s.db.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("insert leaderboard row: %w", err)
	}
	return row.entry(), nil
}

func (s *LeaderboardStore) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	var rows []leaderboardRow
	err := s.db.NewSelect().
		Model(&rows).
		OrderExpr("score DESC, time_spent ASC, completed_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	out := make([]domain.LeaderboardEntry, len(rows))
	for i, r := range rows {
		out[i] = r.entry()
	}
	return out, nil
}
