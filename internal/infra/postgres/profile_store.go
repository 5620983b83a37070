package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"scisoc-quiz-service/internal/domain"
)

// ProfileStore keeps user profiles in the profiles table.
type ProfileStore struct {
	pool *pgxpool.Pool
}

func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

// GetOrCreateProfile inserts p unless a profile for p.UserID exists, and
// returns the stored row. created reports whether the insert happened.
func (s *ProfileStore) GetOrCreateProfile(ctx context.Context, p domain.Profile) (domain.Profile, bool, error) {
	tag, err := s.pool.Exec(ctx, `
INSERT INTO profiles (user_id, full_name, email, avatar_url)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO NOTHING`, p.UserID, p.FullName, p.Email, p.AvatarURL)
	if err != nil {
		return domain.Profile{}, false, fmt.Errorf("insert profile: %w", err)
	}

	var stored domain.Profile
	err = s.pool.QueryRow(ctx, `
SELECT user_id, full_name, email, avatar_url, created_at, updated_at
FROM profiles WHERE user_id = $1`, p.UserID).Scan(
		&stored.UserID, &stored.FullName, &stored.Email, &stored.AvatarURL, &stored.CreatedAt, &stored.UpdatedAt,
	)
	if err != nil {
		return domain.Profile{}, false, fmt.Errorf("load profile: %w", err)
	}
	return stored, tag.RowsAffected() == 1, nil
}

// LookupProfiles returns the profiles known for ids, keyed by user id.
func (s *ProfileStore) LookupProfiles(ctx context.Context, ids []string) (map[string]domain.Profile, error) {
	out := make(map[string]domain.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx, `
SELECT user_id, full_name, email, avatar_url, created_at, updated_at
FROM profiles WHERE user_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.UserID, &p.FullName, &p.Email, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out[p.UserID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	return out, nil
}
