package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trusttrade/trustd/internal/domain"
)

// ProfileStore implements domain.ProfileStore using PostgreSQL.
type ProfileStore struct {
	pool *pgxpool.Pool
}

// NewProfileStore creates a ProfileStore backed by the given pool.
func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

// Upsert creates or replaces the profile for an address.
func (s *ProfileStore) Upsert(ctx context.Context, p domain.Profile) error {
	const query = `
		INSERT INTO profiles (address, twitter, discord, ens_name, avatar_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (address) DO UPDATE SET
			twitter = EXCLUDED.twitter,
			discord = EXCLUDED.discord,
			ens_name = EXCLUDED.ens_name,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = NOW()`

	_, err := s.pool.Exec(ctx, query,
		strings.ToLower(p.Address), p.Twitter, p.Discord, p.ENSName, p.AvatarURL)
	if err != nil {
		return fmt.Errorf("postgres: upsert profile %s: %w", p.Address, err)
	}
	return nil
}

// Get returns the profile for an address.
// It returns domain.ErrNotFound when no profile exists.
func (s *ProfileStore) Get(ctx context.Context, address string) (domain.Profile, error) {
	const query = `
		SELECT address, twitter, discord, ens_name, avatar_url, updated_at
		FROM profiles
		WHERE address = $1`

	var p domain.Profile
	err := s.pool.QueryRow(ctx, query, strings.ToLower(address)).Scan(
		&p.Address, &p.Twitter, &p.Discord, &p.ENSName, &p.AvatarURL, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, domain.ErrNotFound
		}
		return domain.Profile{}, fmt.Errorf("postgres: get profile %s: %w", address, err)
	}
	return p, nil
}

// Compile-time interface check.
var _ domain.ProfileStore = (*ProfileStore)(nil)
