package users

import (
	"context"

	"github.com/stockroom-app/stockroom/internal/shared"
)

// Service handles user profile business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Get returns the profile for a user.
func (s *Service) Get(ctx context.Context, id int64) (Profile, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateSettings rewrites name, email and avatar URL. A duplicate email is
// surfaced as shared.ErrEmailTaken for the form to render as a field error.
func (s *Service) UpdateSettings(ctx context.Context, id int64, input SettingsInput) error {
	return s.repo.UpdateProfile(ctx, id, input)
}

// ResolveIdentity satisfies shared.IdentityResolver for the session guard.
func (s *Service) ResolveIdentity(ctx context.Context, userID int64) (shared.Identity, error) {
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return shared.Identity{}, err
	}
	return shared.Identity{UserID: p.ID, Email: p.Email, Name: p.Name, ImageURL: p.ImageURL}, nil
}
