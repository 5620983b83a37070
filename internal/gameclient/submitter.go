package gameclient

import (
	"context"

	"github.com/sirupsen/logrus"

	"scisoc-quiz-service/internal/app"
	"scisoc-quiz-service/internal/domain"
)

type resultAPI interface {
	SubmitResult(ctx context.Context, userID string, result app.SessionResult) (domain.LeaderboardEntry, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// Submitter records a finished session and reloads the ranking.
type Submitter struct {
	api   resultAPI
	limit int
	log   logrus.FieldLogger
}

func NewSubmitter(api resultAPI, limit int, log logrus.FieldLogger) *Submitter {
	return &Submitter{api: api, limit: app.ClampLimit(limit), log: log}
}

// Finish submits result and then re-fetches the leaderboard, in that order.
// A failed submit is logged and does not stop the re-fetch; the caller shows
// its local result either way.
func (s *Submitter) Finish(ctx context.Context, userID string, result app.SessionResult) ([]domain.LeaderboardEntry, error) {
	if _, err := s.api.SubmitResult(ctx, userID, result); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("submit leaderboard result failed")
	}
	return s.api.Leaderboard(ctx, s.limit)
}
