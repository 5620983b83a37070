package memory

import (
	"context"
	"sync"
	"time"

	"scisoc-quiz-service/internal/domain"
)

// ProfileStore keeps profiles in memory; it serves both profile sync and
// leaderboard label lookups.
type ProfileStore struct {
	mu       sync.RWMutex
	clock    func() time.Time
	profiles map[string]domain.Profile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{clock: time.Now, profiles: make(map[string]domain.Profile)}
}

func (s *ProfileStore) GetOrCreateProfile(_ context.Context, profile domain.Profile) (domain.Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.profiles[profile.UserID]; ok {
		return existing, false, nil
	}
	now := s.clock().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	s.profiles[profile.UserID] = profile
	return profile, true, nil
}

func (s *ProfileStore) LookupProfiles(_ context.Context, userIDs []string) (map[string]domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[string]domain.Profile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := s.profiles[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}
