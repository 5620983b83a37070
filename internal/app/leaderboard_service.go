package app

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"scisoc-quiz-service/internal/domain"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 50

	// MaxScore keeps ranked scores exact in stores that pack score and time
	// into one float64.
	MaxScore = 100_000_000

	fallbackLabelLength = 8
)

// LeaderboardStore persists results and returns them ranked by score
// descending, then time spent ascending, then earlier completion.
type LeaderboardStore interface {
	Insert(ctx context.Context, submission domain.LeaderboardSubmission) (domain.LeaderboardEntry, error)
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// ProfileDirectory resolves display data for a set of users. Missing users
// are simply absent from the result.
type ProfileDirectory interface {
	LookupProfiles(ctx context.Context, userIDs []string) (map[string]domain.Profile, error)
}

// LeaderboardService contains the result submission and ranking use cases.
type LeaderboardService struct {
	store    LeaderboardStore
	profiles ProfileDirectory
	hub      *LeaderboardHub
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewLeaderboardService wires the service; profiles and hub may be nil.
func NewLeaderboardService(store LeaderboardStore, profiles ProfileDirectory, hub *LeaderboardHub, log logrus.FieldLogger) *LeaderboardService {
	return &LeaderboardService{store: store, profiles: profiles, hub: hub, log: log, now: time.Now}
}

// ClampLimit maps a requested page size onto [1, MaxLeaderboardLimit].
func ClampLimit(n int) int {
	if n <= 0 {
		return DefaultLeaderboardLimit
	}
	if n > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return n
}

// ParseLimit reads a page size from a query value using the same integer
// prefix rules as ParseCount.
func ParseLimit(raw string) int {
	n, ok := leadingInt(raw)
	if !ok {
		return DefaultLeaderboardLimit
	}
	return ClampLimit(n)
}

// NewSubmission validates loosely typed numeric fields and builds a submission.
func NewSubmission(userID string, score, totalQuestions, timeSpent float64) (domain.LeaderboardSubmission, error) {
	for _, v := range []float64{score, totalQuestions, timeSpent} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			return domain.LeaderboardSubmission{}, domain.ErrInvalidSubmission
		}
	}
	submission := domain.LeaderboardSubmission{
		UserID:           userID,
		Score:            int(score),
		TotalQuestions:   int(totalQuestions),
		TimeSpentSeconds: int(timeSpent),
	}
	if err := validateSubmission(submission); err != nil {
		return domain.LeaderboardSubmission{}, err
	}
	return submission, nil
}

func validateSubmission(s domain.LeaderboardSubmission) error {
	switch {
	case strings.TrimSpace(s.UserID) == "":
		return fmt.Errorf("%w: userId is required", domain.ErrInvalidSubmission)
	case s.Score < 0:
		return fmt.Errorf("%w: score must not be negative", domain.ErrInvalidSubmission)
	case s.Score > MaxScore:
		return fmt.Errorf("%w: score must not exceed %d", domain.ErrInvalidSubmission, MaxScore)
	case s.TotalQuestions <= 0:
		return fmt.Errorf("%w: totalQuestions must be positive", domain.ErrInvalidSubmission)
	case s.TimeSpentSeconds < 0:
		return fmt.Errorf("%w: timeSpent must not be negative", domain.ErrInvalidSubmission)
	}
	return nil
}

// Submit persists one finished session and notifies live subscribers.
func (s *LeaderboardService) Submit(ctx context.Context, submission domain.LeaderboardSubmission) (domain.LeaderboardEntry, error) {
	if err := validateSubmission(submission); err != nil {
		return domain.LeaderboardEntry{}, err
	}

	entry, err := s.store.Insert(ctx, submission)
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("insert leaderboard entry: %w", err)
	}

	s.publish(ctx)
	return entry, nil
}

// Top returns the ranked page with display labels attached.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	entries, err := s.store.Top(ctx, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	return s.enrich(ctx, entries), nil
}

// Subscribe streams ranked snapshots of up to MaxLeaderboardLimit entries.
func (s *LeaderboardService) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	if s.hub == nil {
		return nil, nil, fmt.Errorf("leaderboard stream not enabled")
	}
	return s.hub.SubscribeWith(func() (domain.Leaderboard, error) {
		entries, err := s.Top(ctx, MaxLeaderboardLimit)
		if err != nil {
			return domain.Leaderboard{}, err
		}
		return domain.Leaderboard{Entries: entries, UpdatedAt: s.now()}, nil
	})
}

func (s *LeaderboardService) publish(ctx context.Context) {
	if s.hub == nil || s.hub.Subscribers() == 0 {
		return
	}
	entries, err := s.Top(ctx, MaxLeaderboardLimit)
	if err != nil {
		s.log.WithError(err).Warn("leaderboard snapshot for subscribers failed")
		return
	}
	s.hub.Publish(domain.Leaderboard{Entries: entries, UpdatedAt: s.now()})
}

// enrich labels entries in place. Lookup failures only affect labels.
func (s *LeaderboardService) enrich(ctx context.Context, entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	var profiles map[string]domain.Profile
	if s.profiles != nil && len(entries) > 0 {
		ids := distinctUserIDs(entries)
		found, err := s.profiles.LookupProfiles(ctx, ids)
		if err != nil {
			s.log.WithError(err).WithField("users", len(ids)).Warn("unable to attach profile names")
		} else {
			profiles = found
		}
	}

	for i := range entries {
		profile, ok := profiles[entries[i].UserID]
		if ok && strings.TrimSpace(profile.FullName) != "" {
			entries[i].DisplayName = profile.FullName
		} else {
			entries[i].DisplayName = FallbackLabel(entries[i].UserID)
		}
		if ok && profile.Email != "" {
			entries[i].Email = profile.Email
		}
	}
	return entries
}

func distinctUserIDs(entries []domain.LeaderboardEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.UserID == "" {
			continue
		}
		if _, ok := seen[e.UserID]; ok {
			continue
		}
		seen[e.UserID] = struct{}{}
		ids = append(ids, e.UserID)
	}
	return ids
}

// FallbackLabel is the partial identifier shown when no name is known.
func FallbackLabel(userID string) string {
	runes := []rune(userID)
	if len(runes) > fallbackLabelLength {
		return string(runes[:fallbackLabelLength])
	}
	return userID
}
