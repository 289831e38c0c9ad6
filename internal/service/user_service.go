package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/trusttrade/trustd/internal/domain"
)

// UserIndex is the slice of the subgraph client the user service needs.
type UserIndex interface {
	FetchUser(ctx context.Context, address string) (domain.User, error)
	FetchUserReviews(ctx context.Context, address string, first int) ([]domain.Review, error)
}

// NameResolver resolves ENS display data for an address.
type NameResolver interface {
	ResolveName(ctx context.Context, address string) (string, error)
	ResolveAvatar(ctx context.Context, address string) string
}

// UserView is the aggregated profile page payload: the subgraph trading
// record plus stored profile handles and resolved ENS display data.
type UserView struct {
	domain.User
	Twitter   string `json:"twitter,omitempty"`
	Discord   string `json:"discord,omitempty"`
	ENSName   string `json:"ensName,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// UserService assembles user views from the subgraph, the profile store,
// and ENS.
type UserService struct {
	index    UserIndex
	profiles domain.ProfileStore
	ens      NameResolver
	logger   *slog.Logger
}

// NewUserService creates a UserService. profiles and ens may be nil.
func NewUserService(index UserIndex, profiles domain.ProfileStore, ens NameResolver, logger *slog.Logger) *UserService {
	return &UserService{
		index:    index,
		profiles: profiles,
		ens:      ens,
		logger:   logger,
	}
}

// Get returns the full user view for an address. An address with no indexed
// trading history still resolves: the subgraph record is zero-valued and the
// profile and ENS layers fill in what they can.
func (s *UserService) Get(ctx context.Context, address string) (UserView, error) {
	address = strings.ToLower(address)

	user, err := s.index.FetchUser(ctx, address)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return UserView{}, fmt.Errorf("users: get %s: %w", address, err)
		}
		user = domain.User{ID: address, Address: address}
	}

	view := UserView{User: user}

	if s.profiles != nil {
		profile, err := s.profiles.Get(ctx, address)
		if err == nil {
			view.Twitter = profile.Twitter
			view.Discord = profile.Discord
			view.ENSName = profile.ENSName
			view.AvatarURL = profile.AvatarURL
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "users: profile read failed",
				slog.String("address", address),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.ens != nil && view.ENSName == "" {
		if name, err := s.ens.ResolveName(ctx, address); err == nil && name != "" {
			view.ENSName = name
		}
		if view.AvatarURL == "" {
			view.AvatarURL = s.ens.ResolveAvatar(ctx, address)
		}
	}

	return view, nil
}

// SaveProfile upserts the social handles for an address.
func (s *UserService) SaveProfile(ctx context.Context, p domain.Profile) error {
	if s.profiles == nil {
		return fmt.Errorf("users: profile store not configured")
	}
	p.Address = strings.ToLower(p.Address)
	return s.profiles.Upsert(ctx, p)
}

// Reviews returns reviews written about an address.
func (s *UserService) Reviews(ctx context.Context, address string, opts domain.ListOpts) ([]domain.Review, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	reviews, err := s.index.FetchUserReviews(ctx, strings.ToLower(address), limit)
	if err != nil {
		return nil, fmt.Errorf("users: reviews for %s: %w", address, err)
	}
	return reviews, nil
}
