package app

import (
	"context"
	"fmt"
	"strings"

	"scisoc-quiz-service/internal/domain"
)

// ProfileStore creates a profile on first sight and returns the stored one
// afterwards. created reports whether this call inserted it.
type ProfileStore interface {
	GetOrCreateProfile(ctx context.Context, profile domain.Profile) (stored domain.Profile, created bool, err error)
}

// ProfileService keeps account profiles in sync with the identity provider.
type ProfileService struct {
	store ProfileStore
}

func NewProfileService(store ProfileStore) *ProfileService {
	return &ProfileService{store: store}
}

// Sync returns the user's profile, creating it on first login. A missing full
// name defaults to the local part of the email.
func (s *ProfileService) Sync(ctx context.Context, userID, email, fullName, avatarURL string) (domain.Profile, bool, error) {
	userID = strings.TrimSpace(userID)
	email = strings.TrimSpace(email)
	if userID == "" || email == "" {
		return domain.Profile{}, false, domain.ErrInvalidProfile
	}
	if strings.TrimSpace(fullName) == "" {
		fullName, _, _ = strings.Cut(email, "@")
	}

	profile, created, err := s.store.GetOrCreateProfile(ctx, domain.Profile{
		UserID:    userID,
		FullName:  fullName,
		Email:     email,
		AvatarURL: avatarURL,
	})
	if err != nil {
		return domain.Profile{}, false, fmt.Errorf("sync profile: %w", err)
	}
	if profile.Email == "" {
		profile.Email = email
	}
	return profile, created, nil
}
